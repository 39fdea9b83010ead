package printing

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Invoice.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  .muted { color: #777; }
  .parties { display: flex; justify-content: space-between; margin: 24px 0; }
  table { width: 100%; border-collapse: collapse; }
  th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
  td.num, th.num { text-align: right; }
  tfoot td { font-weight: bold; border-bottom: none; }
</style>
</head>
<body>
  <h1>{{.Company}}</h1>
  <div class="muted">Invoice {{.Invoice.Number}} &middot; {{date .Invoice.IssuedAt}}</div>

  <div class="parties">
    <div>
      <strong>Billed to</strong><br>
      {{.Invoice.CustomerName}}<br>
      {{with .Invoice.Email}}{{.}}<br>{{end}}
      {{with .Invoice.Street}}{{.}}<br>{{end}}
      {{with .Invoice.City}}{{.}}{{end}}
    </div>
    <div>
      <strong>Order</strong> {{.Invoice.Order.ID}}<br>
      Placed {{date .Invoice.Order.PlacedAt}}<br>
      Payment {{.Invoice.Order.PaymentStatusLabel}}
    </div>
  </div>

  <table>
    <thead>
      <tr><th>Product</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
    </thead>
    <tbody>
    {{range .Invoice.Order.Items}}
      <tr>
        <td>{{.Product.Title}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{money .UnitPrice}}</td>
        <td class="num">{{money .TotalPrice}}</td>
      </tr>
    {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="3" class="num">Total</td><td class="num">{{money .Invoice.Order.TotalPrice}}</td></tr>
    </tfoot>
  </table>
</body>
</html>
`

const invoiceFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#777;">
page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
