package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/turnapp-dev/scheduling-console/backend/internal/config"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * create the logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * load the configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * create the mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("unable to create the mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// verify the SMTP connection before consuming anything
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("unable to connect to the mail server", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * connect to rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("unable to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("unable to open a channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // queue name
		true,          // durable
		false,         // not auto-deleted when the last consumer goes away
		false,         // not exclusive
		false,         // wait for the broker to confirm the declaration
		nil,           // no extra arguments
	)
	if err != nil {
		logger.Error("unable to declare the queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag, assigned by the broker
		false,  // manual acks
		false,  // not exclusive
		false,  // no-local is unsupported by rabbitmq, must be false
		false,  // wait for the broker's response
		nil,    // no extra arguments
	)
	if err != nil {
		logger.Error("unable to consume messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("message received", slog.String("message", string(msg.Body)))

				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("unable to decode the mail message", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("unable to set the mail sender", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("unable to set the mail recipient", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				switch mailMessage.Type {
				case "schedule_published":
					tmpl, err := template.ParseFiles("./templates/schedule_published_email.html")
					if err != nil {
						logger.Error("unable to parse the mail template", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
						logger.Error("unable to set the mail body", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					m.Subject("TURN-APP - Horario publicado")
				default:
					logger.Error("unsupported mail type", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("unable to send the mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue for another attempt
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("waiting for messages... (press CTRL+C to exit)")
	<-sigChan

	slog.Info("shutting down mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker stopped")
}
