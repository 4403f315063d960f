package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

const verificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Beste {{.Name}},</p>
  <p>Welkom bij Koubyte. Gebruik deze code om uw e-mailadres te bevestigen:</p>
  <p style="font-size:24px;letter-spacing:4px;"><strong>{{.Code}}</strong></p>
  <p>De code is 15 minuten geldig.</p>
  <p>Met vriendelijke groet,<br>Het Koubyte team</p>
</body>
</html>`

const passwordResetTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Beste {{.Name}},</p>
  <p>U vroeg een nieuw wachtwoord aan. Gebruik deze code:</p>
  <p style="font-size:24px;letter-spacing:4px;"><strong>{{.Code}}</strong></p>
  <p>De code is 15 minuten geldig. Vroeg u dit niet aan, negeer dan deze e-mail.</p>
  <p>Met vriendelijke groet,<br>Het Koubyte team</p>
</body>
</html>`

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Beste {{.Name}},</p>
  <p>Bedankt voor uw bestelling <strong>{{.OrderNumber}}</strong>.</p>
  <ul>
  {{range .Items}}
    <li>{{.ServiceName}} &times; {{.Quantity}} &mdash; {{.LineTotal}}</li>
  {{end}}
  </ul>
  <p>Subtotaal: {{.Total}}</p>
  {{if .Discount}}<p>Korting: -{{.Discount}}</p>{{end}}
  <p><strong>Te betalen: {{.Final}}</strong></p>
  <p>Met vriendelijke groet,<br>Het Koubyte team</p>
</body>
</html>`

const adminOrderTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Nieuwe bestelling <strong>{{.OrderNumber}}</strong> van {{.Name}} ({{.Email}}).</p>
  <p>Totaal: {{.Final}}</p>
</body>
</html>`

const appointmentConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Beste {{.Name}},</p>
  <p>Uw afspraak is geregistreerd:</p>
  <ul>
    <li>Dienst: {{.Service}}</li>
    <li>Datum: {{.Date}}</li>
    <li>Tijd: {{.Time}}</li>
  </ul>
  <p>Wij bevestigen de afspraak zo snel mogelijk.</p>
  <p>Met vriendelijke groet,<br>Het Koubyte team</p>
</body>
</html>`

const refundConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Beste {{.Name}},</p>
  <p>Uw betaling voor bestelling <strong>{{.OrderNumber}}</strong> is terugbetaald.</p>
  <p>Bedrag: {{.Amount}}</p>
  <p>Het kan enkele werkdagen duren voor het bedrag op uw rekening staat.</p>
  <p>Met vriendelijke groet,<br>Het Koubyte team</p>
</body>
</html>`

const adminQuoteTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Nieuwe offerteaanvraag van {{.Name}} ({{.Email}}).</p>
  <ul>
    <li>Dienst: {{.Service}}</li>
    {{if .Budget}}<li>Budget: {{.Budget}}</li>{{end}}
  </ul>
  <p>{{.Description}}</p>
</body>
</html>`

var (
	verificationTmpl  = template.Must(template.New("verification").Parse(verificationTemplate))
	passwordResetTmpl = template.Must(template.New("password_reset").Parse(passwordResetTemplate))
	orderTmpl         = template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate))
	adminOrderTmpl    = template.Must(template.New("admin_order").Parse(adminOrderTemplate))
	appointmentTmpl   = template.Must(template.New("appointment_confirmation").Parse(appointmentConfirmationTemplate))
	refundTmpl        = template.Must(template.New("refund_confirmation").Parse(refundConfirmationTemplate))
	adminQuoteTmpl    = template.Must(template.New("admin_quote").Parse(adminQuoteTemplate))
)

// Euros renders cents as a euro amount, comma decimal.
func Euros(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%d,%02d", sign, cents/100, cents%100)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func VerificationMessage(user models.User, code string) (Message, error) {
	html, err := render(verificationTmpl, map[string]string{"Name": user.Name, "Code": code})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Bevestig uw e-mailadres",
		HTML:    html,
	}, nil
}

func PasswordResetMessage(user models.User, code string) (Message, error) {
	html, err := render(passwordResetTmpl, map[string]string{"Name": user.Name, "Code": code})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Wachtwoord opnieuw instellen",
		HTML:    html,
	}, nil
}

type orderItemView struct {
	ServiceName string
	Quantity    int
	LineTotal   string
}

func OrderConfirmationMessage(order models.Order) (Message, error) {
	items := make([]orderItemView, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, orderItemView{
			ServiceName: it.ServiceName,
			Quantity:    it.Quantity,
			LineTotal:   Euros(it.UnitPrice * int64(it.Quantity)),
		})
	}
	discount := ""
	if order.DiscountAmount > 0 {
		discount = Euros(order.DiscountAmount)
	}
	html, err := render(orderTmpl, map[string]interface{}{
		"Name":        order.CustomerName,
		"OrderNumber": order.OrderNumber,
		"Items":       items,
		"Total":       Euros(order.TotalAmount),
		"Discount":    discount,
		"Final":       Euros(order.FinalAmount),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: order.CustomerEmail,
		ToName:  order.CustomerName,
		Subject: fmt.Sprintf("Bevestiging bestelling %s", order.OrderNumber),
		HTML:    html,
	}, nil
}

func AdminOrderMessage(order models.Order, adminEmail string) (Message, error) {
	html, err := render(adminOrderTmpl, map[string]string{
		"OrderNumber": order.OrderNumber,
		"Name":        order.CustomerName,
		"Email":       order.CustomerEmail,
		"Final":       Euros(order.FinalAmount),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: adminEmail,
		Subject: fmt.Sprintf("Nieuwe bestelling %s", order.OrderNumber),
		HTML:    html,
	}, nil
}

func AppointmentConfirmationMessage(appt models.Appointment) (Message, error) {
	html, err := render(appointmentTmpl, map[string]string{
		"Name":    appt.Name,
		"Service": appt.Service,
		"Date":    appt.Date,
		"Time":    appt.Time,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: appt.Email,
		ToName:  appt.Name,
		Subject: "Bevestiging van uw afspraak",
		HTML:    html,
	}, nil
}

func RefundConfirmationMessage(order models.Order, amount int64) (Message, error) {
	html, err := render(refundTmpl, map[string]string{
		"Name":        order.CustomerName,
		"OrderNumber": order.OrderNumber,
		"Amount":      Euros(amount),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: order.CustomerEmail,
		ToName:  order.CustomerName,
		Subject: fmt.Sprintf("Terugbetaling bestelling %s", order.OrderNumber),
		HTML:    html,
	}, nil
}

func AdminQuoteMessage(quote models.Quote, adminEmail string) (Message, error) {
	html, err := render(adminQuoteTmpl, map[string]string{
		"Name":        quote.Name,
		"Email":       quote.Email,
		"Service":     quote.Service,
		"Budget":      quote.Budget,
		"Description": quote.Description,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToEmail: adminEmail,
		Subject: fmt.Sprintf("Nieuwe offerteaanvraag: %s", quote.Service),
		HTML:    html,
	}, nil
}
