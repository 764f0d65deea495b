package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/mail"
	"github.com/diewo77/plombicrm/internal/services"
)

// Digest mails the day's derived alerts to the company address.
type Digest struct {
	DB      *gorm.DB
	Mailer  mail.Mailer
	To      string
	Account uint
	Now     func() time.Time

	running int32
}

// Run sends one message listing the current alerts. Nothing is sent when mail is off,
// no recipient is set or there is nothing to report.
func (d *Digest) Run(ctx context.Context) error {
	if d.Mailer == nil || !d.Mailer.Enabled() || d.To == "" {
		return nil
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	alerts, err := services.AlertsFor(d.DB.WithContext(ctx), d.Account, now())
	if err != nil {
		return fmt.Errorf("digest: alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Bonjour,\n\nPoints à suivre aujourd'hui :\n\n")
	for _, a := range alerts {
		b.WriteString("- " + a.Label + "\n")
	}
	b.WriteString("\nPlombiCRM\n")
	return d.Mailer.Send(ctx, mail.Message{
		To:      []string{d.To},
		Subject: fmt.Sprintf("PlombiCRM : %d alerte(s) du jour", len(alerts)),
		Text:    b.String(),
	})
}

// tick runs the digest unless a previous run is still in flight.
func (d *Digest) tick() {
	if !atomic.CompareAndSwapInt32(&d.running, 0, 1) {
		log.Println("digest: previous run still in progress, skipping")
		return
	}
	defer atomic.StoreInt32(&d.running, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		log.Printf("digest: %v", err)
	}
}

// Start schedules the digest on a cron spec evaluated in Europe/Paris. An empty spec disables it
// and returns a nil scheduler.
func Start(spec string, d *Digest) (*cron.Cron, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	c := cron.New(
		cron.WithLocation(calendar.Paris),
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	if _, err := c.AddFunc(spec, d.tick); err != nil {
		return nil, fmt.Errorf("digest: schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
