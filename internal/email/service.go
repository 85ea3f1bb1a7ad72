// Package email sends transactional storefront mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/storefront/internal/domain/order"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email. names maps product
// ids to display names; missing entries fall back to the id.
func (s *Service) SendOrderConfirmation(to string, o order.Order, names map[string]string) error {
	return s.send(to, ConfirmationSubject(o), BuildOrderConfirmationBody(o, names))
}

// SendDeliveryNotice tells the customer their order was handed to the courier.
func (s *Service) SendDeliveryNotice(to string, o order.Order) error {
	return s.send(to, DeliverySubject(o), BuildDeliveryNoticeBody(o))
}

func ConfirmationSubject(o order.Order) string {
	return fmt.Sprintf("Order confirmed: thanks for your purchase (order %s)", shortID(o))
}

func DeliverySubject(o order.Order) string {
	return fmt.Sprintf("Your order %s is out for delivery", shortID(o))
}

func shortID(o order.Order) string {
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
