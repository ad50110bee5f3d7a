// Package smtp предоставляет транспорт для отправки писем уведомлений.
package smtp

import "io"

// Client интерфейс SMTP-клиента, минимально необходимый для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface интерфейс для SMTP транспорта.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
