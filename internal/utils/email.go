package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"footvibe_back_end/internal/models"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"
)

// SendConfirmationEmail envoie l'e-mail de confirmation de commande
func SendConfirmationEmail(to, subject, htmlBody string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST non configuré")
	}

	msg := mail.NewMsg()
	if err := msg.From(os.Getenv("SMTP_FROM")); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderQR génère un QR de la référence commande en base64 prêt à
// mettre dans <img src="..."> (présenté en magasin pour retours/échanges)
func GenerateOrderQR(orderRef string) (string, error) {
	png, err := qrcode.Encode("FOOTVIBE:"+orderRef, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		name := item.ProductID.Hex()
		if item.Product != nil {
			name = item.Product.Name
		}
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>₹%.2f</td>
				<td>₹%.2f</td>
			</tr>`, name, item.Quantity, item.Price, item.Subtotal())
	}

	qrHTML := ""
	if qr, err := GenerateOrderQR(order.ID.Hex()); err == nil {
		qrHTML = fmt.Sprintf(`<p style="text-align: center;"><img src="%s" alt="QR commande" width="128" height="128"></p>`, qr)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre paiement est confirmé</h2>
		<p>Bonjour,</p>
		<p>Votre commande <strong>%s</strong> a bien été payée.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">₹%.2f</td>
				</tr>
			</tfoot>
		</table>

		%s

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe FootVibe</strong>
		</p>
	</div>
</body>
</html>`, order.ID.Hex(), itemsHTML, order.Total, qrHTML)
}
