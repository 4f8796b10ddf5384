package application

import (
	"booking_service/domain"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"
)

type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, booking *domain.BookingDetails) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type MailNotifier struct {
	config SMTPConfig
	dialer *gomail.Dialer
	cb     *gobreaker.CircuitBreaker
	tracer trace.Tracer
	logger *logrus.Logger
}

// NewMailNotifier returns a notifier that mails the booker on status changes,
// or a no-op notifier when SMTP is not configured.
func NewMailNotifier(config SMTPConfig, tracer trace.Tracer, logger *logrus.Logger) StatusNotifier {
	if !config.Enabled() {
		logger.Infoln("MailNotifier : SMTP not configured, status mails disabled")
		return NoopNotifier{}
	}
	return &MailNotifier{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		cb:     CircuitBreaker("mailNotifier", logger),
		tracer: tracer,
		logger: logger,
	}
}

func (notifier *MailNotifier) NotifyStatusChange(ctx context.Context, booking *domain.BookingDetails) error {
	_, span := notifier.tracer.Start(ctx, "MailNotifier.NotifyStatusChange")
	defer span.End()

	if booking.UserEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", notifier.config.From)
	m.SetHeader("To", booking.UserEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your booking for %s is %s", booking.PackageName, booking.Status))
	m.SetBody("text/plain", statusMailBody(booking))

	_, err := notifier.cb.Execute(func() (interface{}, error) {
		return nil, notifier.dialer.DialAndSend(m)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		notifier.logger.Errorf("MailNotifier.NotifyStatusChange : %v", err)
		return err
	}
	return nil
}

func statusMailBody(booking *domain.BookingDetails) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThe status of your booking for %s (%s to %s, %d people) is now %s.\n\nWanderlust",
		booking.UserName,
		booking.PackageName,
		booking.StartDate.Format("2006-01-02"),
		booking.EndDate.Format("2006-01-02"),
		booking.NumberOfPeople,
		booking.Status,
	)
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyStatusChange(context.Context, *domain.BookingDetails) error {
	return nil
}
