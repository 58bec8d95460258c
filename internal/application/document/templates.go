package document

import (
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// templateFuncs are the formatting helpers available inside document
// templates. Money is rendered with thousand separators and two decimals;
// the currency code comes from the render data, never from the template.
var templateFuncs = template.FuncMap{
	"formatMoney": formatMoney,
	"formatQty":   formatQty,
	"formatDate":  formatDate,
	"upper":       strings.ToUpper,
	"statusLabel": statusLabel,
}

func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + parts[1]
}

func formatQty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func statusLabel(status string) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(status, "_", " ")))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.OrderNumber}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
  h1 { font-size: 24px; letter-spacing: 2px; }
  .meta { margin-bottom: 24px; }
  .meta td { padding: 2px 16px 2px 0; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.lines th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 6px 8px; }
  table.lines td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
  .num { text-align: right; }
  .totals { margin-top: 16px; width: 320px; margin-left: auto; }
  .totals td { padding: 3px 8px; }
  .totals tr.grand td { border-top: 2px solid #1a1a1a; font-weight: bold; }
  .footer { margin-top: 48px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<h1>INVOICE</h1>
<table class="meta">
  <tr><td>Invoice for</td><td>{{.CustomerName}}</td></tr>
  <tr><td>Order number</td><td>{{.OrderNumber}}</td></tr>
  <tr><td>Order date</td><td>{{formatDate .OrderDate}}</td></tr>
  <tr><td>Status</td><td>{{statusLabel .Status}}</td></tr>
  {{if .Carrier}}<tr><td>Carrier</td><td>{{.Carrier}} {{.TrackingNumber}}</td></tr>{{end}}
</table>

<table class="lines">
  <tr><th>SKU</th><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.SKU}}</td>
    <td>{{.Name}}</td>
    <td class="num">{{formatQty .Qty}}</td>
    <td class="num">{{formatMoney .UnitPrice}}</td>
    <td class="num">{{formatMoney .LineTotal}}</td>
  </tr>
  {{end}}
</table>

<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{formatMoney .Subtotal}} {{.Currency}}</td></tr>
  {{if not .DiscountAmount.IsZero}}<tr><td>Discount</td><td class="num">-{{formatMoney .DiscountAmount}} {{.Currency}}</td></tr>{{end}}
  <tr class="grand"><td>Total due</td><td class="num">{{formatMoney .GrandTotal}} {{.Currency}}</td></tr>
</table>

<div class="footer">Generated {{formatDate .GeneratedAt}} &middot; {{.OrderNumber}}</div>
</body>
</html>
`

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.OrderNumber}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
  h1 { font-size: 24px; letter-spacing: 2px; }
  .meta { margin-bottom: 24px; }
  .meta td { padding: 2px 16px 2px 0; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.lines th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 6px 8px; }
  table.lines td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
  .num { text-align: right; }
  .totals { margin-top: 16px; width: 320px; margin-left: auto; }
  .totals td { padding: 3px 8px; }
  .totals tr.grand td { border-top: 2px solid #1a1a1a; font-weight: bold; }
  .footer { margin-top: 48px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<h1>GOODS RECEIPT</h1>
<table class="meta">
  <tr><td>Supplier</td><td>{{.SupplierName}}</td></tr>
  <tr><td>Order number</td><td>{{.OrderNumber}}</td></tr>
  <tr><td>Order date</td><td>{{formatDate .OrderDate}}</td></tr>
  <tr><td>Status</td><td>{{statusLabel .Status}}</td></tr>
  <tr><td>Payment</td><td>{{statusLabel .PaymentStatus}}</td></tr>
</table>

<table class="lines">
  <tr><th>SKU</th><th>Item</th><th class="num">Ordered</th><th class="num">Received</th><th class="num">Unit cost</th><th class="num">Amount</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.SKU}}</td>
    <td>{{.Name}}</td>
    <td class="num">{{formatQty .QtyOrdered}}</td>
    <td class="num">{{formatQty .QtyReceived}}</td>
    <td class="num">{{formatMoney .UnitCost}}</td>
    <td class="num">{{formatMoney .LineTotal}}</td>
  </tr>
  {{end}}
</table>

<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{formatMoney .Subtotal}} {{.Currency}}</td></tr>
  {{if not .TaxAmount.IsZero}}<tr><td>Tax</td><td class="num">{{formatMoney .TaxAmount}} {{.Currency}}</td></tr>{{end}}
  {{if not .ShippingCost.IsZero}}<tr><td>Shipping</td><td class="num">{{formatMoney .ShippingCost}} {{.Currency}}</td></tr>{{end}}
  <tr class="grand"><td>Total</td><td class="num">{{formatMoney .GrandTotal}} {{.Currency}}</td></tr>
  <tr><td>Paid</td><td class="num">{{formatMoney .PaidAmount}} {{.Currency}}</td></tr>
</table>

<div class="footer">Generated {{formatDate .GeneratedAt}} &middot; {{.OrderNumber}}</div>
</body>
</html>
`

var (
	invoiceTmpl = template.Must(template.New("invoice").Funcs(templateFuncs).Parse(invoiceTemplate))
	receiptTmpl = template.Must(template.New("receipt").Funcs(templateFuncs).Parse(receiptTemplate))
)
