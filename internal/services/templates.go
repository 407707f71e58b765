package services

import (
	"bytes"
	"html/template"
)

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Thank you for your order, {{.Name}}!</h2>
  <p>Your order <strong>#{{.OrderID}}</strong> has been placed.</p>
  <table style="border-collapse: collapse;">
    <tr><td>Tracking ID</td><td><strong>{{.TrackingID}}</strong></td></tr>
    <tr><td>Date</td><td>{{.Date}} {{.Time}}</td></tr>
    <tr><td>Payment</td><td>{{.PaymentStatus}}{{if .PaymentMethod}} ({{.PaymentMethod}}){{end}}</td></tr>
    <tr><td>Total</td><td>{{printf "%.2f" .Price}}</td></tr>
    <tr><td>Shipping to</td><td>{{.Address}}</td></tr>
  </table>
  <p>Items:</p>
  <ul>{{range .ProductIDs}}<li>{{.}}</li>{{end}}</ul>
</div>`))

var broadcastTmpl = template.Must(template.New("broadcast").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Hi {{.Name}},</p>
  <p>{{.Message}}</p>
</div>`))

var otpTmpl = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Seller Verification</h2>
  <p>Your verification OTP is: <strong>{{.Code}}</strong></p>
  <p>It expires in {{.TTL}}.</p>
</div>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
