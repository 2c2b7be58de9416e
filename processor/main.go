package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"html/template"
	"log"
	"time"

	"botsprinter/config"
	"botsprinter/database"
	"botsprinter/logger"
	"botsprinter/services"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
	<body>
		<h3>Consumables below minimum</h3>
		<p>Checked at {{.CheckedAt}}</p>
		<table border="1" cellpadding="4" cellspacing="0">
			<tr><th>Location</th><th>Model</th><th>Type</th><th>On hand</th><th>Minimum</th><th>Note</th></tr>
			{{- range .Warnings}}
			<tr><td>{{.Place}}</td><td>{{.Model}}</td><td>{{.Type}}</td><td>{{.Amount}}</td><td>{{.Minimum}}</td><td>{{.Message}}</td></tr>
			{{- end}}
		</table>
		<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
	</body>
</html>
`))

type digest struct {
	Subject string
	Body    string
}

// buildDigest renders the warning mail with tmpl. It returns nil when there is
// nothing to report.
func buildDigest(tmpl *template.Template, warnings []services.StockWarning, now time.Time) (*digest, error) {
	if len(warnings) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		CheckedAt string
		Warnings  []services.StockWarning
	}{
		CheckedAt: now.Format("2006-01-02 15:04"),
		Warnings:  warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	return &digest{
		Subject: fmt.Sprintf("Low stock: %d consumable warning(s)", len(warnings)),
		Body:    buf.String(),
	}, nil
}

func newMessage(cfg config.SMTPConfig, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.From)
	msg.SetHeader("To", cfg.Recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

func sendDigest(cfg config.SMTPConfig, d *digest) error {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return dialer.DialAndSend(newMessage(cfg, d.Subject, d.Body))
}

func main() {
	dryRun := flag.Bool("dry-run", false, "print the digest instead of mailing it")
	flag.Parse()

	cfg := config.LoadConfig()
	zlog, err := logger.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	warnings, err := services.NewAnalyticsService(db).LowStockWarnings(ctx)
	if err != nil {
		zlog.Fatal("Failed to evaluate stock levels", zap.Error(err))
	}

	d, err := buildDigest(digestTemplate, warnings, time.Now())
	if err != nil {
		zlog.Fatal("Failed to build digest", zap.Error(err))
	}
	if d == nil {
		zlog.Info("All stock is above its minimum")
		return
	}

	if *dryRun || !cfg.SMTP.Enabled() {
		if !*dryRun {
			zlog.Warn("SMTP is not configured, printing digest instead")
		}
		fmt.Println(d.Subject)
		fmt.Println(d.Body)
		return
	}

	if err := sendDigest(cfg.SMTP, d); err != nil {
		zlog.Fatal("Failed to send digest", zap.Error(err))
	}
	zlog.Info("Low stock digest sent", zap.Strings("to", cfg.SMTP.Recipients), zap.Int("warnings", len(warnings)))
}
