package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/mail"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/internal/pricing"
	"github.com/diewo77/plombicrm/internal/signature"
	"github.com/diewo77/plombicrm/internal/storage"
	"github.com/diewo77/plombicrm/pdf"
	"github.com/diewo77/plombicrm/validation"
)

// QuoteInput is a quote submission. Hours has already been run through the duration parser.
type QuoteInput struct {
	ClientID       uint
	ServiceID      uint
	MaterialID     *uint
	Hours          float64
	Discount       float64
	SendEmail      bool
	Materials      []pricing.MaterialLine
	MaterialsTotal *float64
}

// CreateQuoteResult reports the stored quote and the outcome of the optional send step.
type CreateQuoteResult struct {
	Quote     *models.Quote
	EmailSent bool
	SendError error
}

// SignResult is the answer of the public sign endpoint.
type SignResult struct {
	Quote         *models.Quote
	AlreadySigned bool
}

// PublicQuote is what the public accept/sign pages may show.
type PublicQuote struct {
	Ref        string
	ClientName string
	Service    string
	Amount     float64
	Status     models.QuoteStatus
	Signed     bool
	SignerName string
	PDFURL     string
}

// QuoteService runs the quote lifecycle: pricing, rendering, mailing and the public accept/sign flow.
type QuoteService struct {
	DB      *gorm.DB
	Mailer  mail.Mailer
	Docs    storage.Documents
	Company pdf.Party
	BaseURL string
	Now     func() time.Time
}

func NewQuoteService(db *gorm.DB, m mail.Mailer, docs storage.Documents, company pdf.Party, baseURL string) *QuoteService {
	return &QuoteService{
		DB:      db,
		Mailer:  m,
		Docs:    docs,
		Company: company,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Now:     time.Now,
	}
}

func (s *QuoteService) List(userID uint) ([]models.Quote, error) {
	var out []models.Quote
	err := s.DB.Where("user_id = ?", userID).Order("id DESC").Find(&out).Error
	return out, err
}

func (s *QuoteService) Get(userID, id uint) (*models.Quote, error) {
	return owned[models.Quote](s.DB, userID, id, ErrQuoteNotFound)
}

// Document returns the stored PDF of a quote, the signed copy when there is one.
func (s *QuoteService) Document(userID, id uint) (string, []byte, error) {
	q, err := s.Get(userID, id)
	if err != nil {
		return "", nil, err
	}
	names := []string{q.Ref() + ".pdf"}
	if q.Signed() {
		names = append([]string{q.Ref() + "-signe.pdf"}, names...)
	}
	for _, name := range names {
		if data, err := s.Docs.Open(name); err == nil {
			return name, data, nil
		}
	}
	return "", nil, ErrDocumentNotFound
}

// Create prices and stores a quote. When SendEmail is set it then renders, stores and mails
// the document; a failed send leaves the quote stored as pending and is reported in the result.
func (s *QuoteService) Create(ctx context.Context, userID uint, in QuoteInput) (*CreateQuoteResult, error) {
	v := validation.Violations{}
	validation.RequiredID("clientId", in.ClientID, v)
	validation.RequiredID("serviceId", in.ServiceID, v)
	validation.RangeFloat("discount", in.Discount, 0, 100, v)
	if in.MaterialsTotal != nil {
		validation.Finite("materialsTotal", *in.MaterialsTotal, v)
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	if in.Hours <= 0 || math.IsNaN(in.Hours) || math.IsInf(in.Hours, 0) {
		return nil, ErrInvalidDuration
	}

	client, err := owned[models.Client](s.DB, userID, in.ClientID, ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	service, err := owned[models.Service](s.DB, userID, in.ServiceID, ErrServiceNotFound)
	if err != nil {
		return nil, err
	}
	ref, materialsTotal, err := s.resolveMaterials(userID, in)
	if err != nil {
		return nil, err
	}
	settings, err := ensureSettings(s.DB, userID)
	if err != nil {
		return nil, err
	}

	status := models.QuoteStatusPending
	if in.SendEmail {
		status = models.QuoteStatusSent
	}
	q := models.Quote{
		UserID:         userID,
		ClientID:       client.ID,
		ServiceID:      service.ID,
		MaterialID:     ref.ID,
		Hours:          in.Hours,
		Discount:       in.Discount,
		Amount:         pricing.Price(service.BasePrice, materialsTotal, in.Hours, settings.LaborRate, in.Discount),
		Status:         status,
		SentAt:         s.Now().Format(models.DateLayout),
		MaterialsDesc:  describeMaterials(in.Materials),
		MaterialsTotal: materialsTotal,
	}
	if err := s.DB.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, err
	}

	res := &CreateQuoteResult{Quote: &q}
	if !in.SendEmail {
		return res, nil
	}
	if err := s.send(ctx, &q, client, service, settings, in.Materials); err != nil {
		log.Printf("quotes: %s not sent: %v", q.Ref(), err)
		res.SendError = err
		if err := s.DB.Model(&q).Update("status", models.QuoteStatusPending).Error; err != nil {
			return nil, err
		}
		q.Status = models.QuoteStatusPending
		return res, nil
	}
	res.EmailSent = true
	return res, nil
}

// resolveMaterials picks the material reference and the materials total. A supplied total wins,
// then the sum of named lines, then the catalog material price.
func (s *QuoteService) resolveMaterials(userID uint, in QuoteInput) (models.MaterialRef, float64, error) {
	var (
		ref   models.MaterialRef
		price float64
	)
	if in.MaterialID != nil && *in.MaterialID != 0 {
		m, err := owned[models.Material](s.DB, userID, *in.MaterialID, ErrMaterialNotFound)
		if err != nil {
			return ref, 0, err
		}
		ref = models.NamedMaterial(m.ID)
		price = m.Price
	}
	total := price
	switch {
	case in.MaterialsTotal != nil:
		total = *in.MaterialsTotal
	case len(in.Materials) > 0:
		total = pricing.SumMaterials(in.Materials)
	}
	if !ref.Named() {
		ref = models.AdHocMaterials(total)
	}
	return ref, total, nil
}

// describeMaterials renders named lines as "Pipe (30€), Valve (20€)".
func describeMaterials(lines []pricing.MaterialLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s (%s€)", l.Label(), strconv.FormatFloat(l.Price, 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}

func newToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *QuoteService) signURL(token string) string {
	return s.BaseURL + "/public/sign/" + token
}

func (s *QuoteService) documentURL(path string) string {
	return s.BaseURL + path
}

func party(c *models.Client) pdf.Party {
	return pdf.Party{Name: c.Name, Address: c.Address, Phone: c.Phone, Email: c.Email}
}

func documentItems(items []pricing.LineItem) []pdf.QuoteItem {
	out := make([]pdf.QuoteItem, len(items))
	for i, it := range items {
		out[i] = pdf.QuoteItem{
			Description: it.Label,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
			Section:     it.Section,
		}
	}
	return out
}

func documentTotals(t pricing.Totals) pdf.QuoteTotals {
	return pdf.QuoteTotals{
		Subtotal:        t.Subtotal,
		DiscountPercent: t.DiscountPercent,
		DiscountAmount:  t.DiscountAmount,
		TaxRate:         t.TaxRate,
		Tax:             t.Tax,
		Total:           t.Total,
		Date:            t.Date,
	}
}

func (s *QuoteService) issueDate(q *models.Quote) time.Time {
	if d, err := time.ParseInLocation(models.DateLayout, q.SentAt, time.Local); err == nil {
		return d
	}
	return s.Now()
}

var sendTemplate = template.Must(template.New("quote").Parse(`<p>Bonjour {{.Client}},</p>
<p>Voici votre devis pour {{.Service}}. Total estimé : {{.Amount}} €.</p>
<p><a href="{{.DownloadURL}}">Télécharger le devis</a></p>
<p><a href="{{.SignURL}}">Signer électroniquement</a></p>
<p>Merci,<br>PlombiCRM</p>`))

// send renders the quote, stores the document, attaches a sign token and mails the client.
func (s *QuoteService) send(ctx context.Context, q *models.Quote, client *models.Client, service *models.Service, settings *models.Settings, named []pricing.MaterialLine) error {
	if !s.Mailer.Enabled() {
		return mail.ErrNotConfigured
	}
	if strings.TrimSpace(client.Email) == "" {
		return ErrNoRecipient
	}
	token, err := newToken()
	if err != nil {
		return err
	}
	items := pricing.BuildItems(pricing.ItemsInput{
		ServiceName:    service.Name,
		ServicePrice:   service.BasePrice,
		Hours:          q.Hours,
		LaborRate:      settings.LaborRate,
		Materials:      named,
		MaterialsTotal: q.MaterialsTotal,
	})
	totals := pricing.ComputeTotals(items, q.Discount, s.issueDate(q))
	doc, err := pdf.QuotePDF(pdf.QuoteData{
		Ref:     q.Ref(),
		Company: s.Company,
		Client:  party(client),
		Items:   documentItems(items),
		Totals:  documentTotals(totals),
		SignURL: s.signURL(token),
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	path, err := s.Docs.Save(q.Ref()+".pdf", doc)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.DB.Model(q).Update("accept_token", token).Error; err != nil {
		return err
	}
	q.AcceptToken = &token

	var body strings.Builder
	err = sendTemplate.Execute(&body, map[string]string{
		"Client":      client.Name,
		"Service":     service.Name,
		"Amount":      strconv.FormatFloat(q.Amount, 'f', -1, 64),
		"DownloadURL": s.documentURL(pathEscape(path)),
		"SignURL":     s.signURL(token),
	})
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, mail.Message{
		To:      []string{client.Email},
		Subject: "Votre devis plomberie BTP",
		HTML:    body.String(),
	})
}

func pathEscape(p string) string {
	dir, file := p[:strings.LastIndex(p, "/")+1], p[strings.LastIndex(p, "/")+1:]
	return dir + url.PathEscape(file)
}

// ToggleAck flips the acknowledgment flag.
func (s *QuoteService) ToggleAck(userID, id uint) (*models.Quote, error) {
	q, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(q).Update("ack", !q.Ack).Error; err != nil {
		return nil, err
	}
	q.Ack = !q.Ack
	return q, nil
}

// SetStatus is the operator override; any status may follow any other. No acceptance timestamp is recorded.
func (s *QuoteService) SetStatus(userID, id uint, raw string) (*models.Quote, error) {
	st, ok := models.ParseQuoteStatus(strings.TrimSpace(raw))
	if !ok {
		return nil, ErrInvalidStatus
	}
	q, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(q).Update("status", st).Error; err != nil {
		return nil, err
	}
	q.Status = st
	return q, nil
}

func (s *QuoteService) byToken(ctx context.Context, token string) (*models.Quote, error) {
	if token == "" {
		return nil, ErrInvalidLink
	}
	var q models.Quote
	err := s.DB.WithContext(ctx).Where("accept_token = ?", token).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidLink
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AcceptByToken marks the quote accepted once. Repeated calls report already=true and change nothing.
func (s *QuoteService) AcceptByToken(ctx context.Context, token string) (q *models.Quote, already bool, err error) {
	q, err = s.byToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if q.Status == models.QuoteStatusAccepted {
		return q, true, nil
	}
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ? AND status <> ?", q.ID, models.QuoteStatusAccepted).
		Updates(map[string]any{"status": models.QuoteStatusAccepted, "ack": true, "accepted_at": now})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		q, err = s.byToken(ctx, token)
		return q, true, err
	}
	q.Status, q.Ack, q.AcceptedAt = models.QuoteStatusAccepted, true, &now
	return q, false, nil
}

// SignByToken stores the signature exactly once, then re-renders the signed document and mails it
// to the company. Rendering and mailing failures are logged and do not undo the signature.
func (s *QuoteService) SignByToken(ctx context.Context, token, signerName, payload string) (*SignResult, error) {
	q, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if q.Signed() {
		return &SignResult{Quote: q, AlreadySigned: true}, nil
	}
	signerName = strings.TrimSpace(signerName)
	v := validation.Violations{}
	validation.Required("signerName", signerName, v)
	validation.Required("signature", payload, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	img, err := signature.Decode(payload)
	if err != nil {
		return nil, &ValidationError{Violations: validation.Violations{"signature": "invalid_signature"}}
	}
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)

	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ? AND signature_data IS NULL", q.ID).
		Updates(map[string]any{
			"status":         models.QuoteStatusAccepted,
			"ack":            true,
			"accepted_at":    now,
			"signer_name":    signerName,
			"signature_data": data,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		q, err = s.byToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &SignResult{Quote: q, AlreadySigned: true}, nil
	}
	q.Status, q.Ack, q.AcceptedAt = models.QuoteStatusAccepted, true, &now
	q.SignerName, q.SignatureData = &signerName, &data

	if err := s.finalizeSigned(ctx, q, signerName, img.PNG); err != nil {
		log.Printf("quotes: %s signed but follow-up failed: %v", q.Ref(), err)
	}
	return &SignResult{Quote: q}, nil
}

// finalizeSigned rebuilds the document from the stored quote (aggregate materials total) with the signature.
func (s *QuoteService) finalizeSigned(ctx context.Context, q *models.Quote, signerName string, png []byte) error {
	var client models.Client
	if err := s.DB.First(&client, q.ClientID).Error; err != nil {
		return err
	}
	var service models.Service
	if err := s.DB.First(&service, q.ServiceID).Error; err != nil {
		return err
	}
	settings, err := ensureSettings(s.DB, q.UserID)
	if err != nil {
		return err
	}
	items := pricing.BuildItems(pricing.ItemsInput{
		ServiceName:    service.Name,
		ServicePrice:   service.BasePrice,
		Hours:          q.Hours,
		LaborRate:      settings.LaborRate,
		MaterialsTotal: q.Materials().Total,
	})
	doc, err := pdf.QuotePDF(pdf.QuoteData{
		Ref:       q.Ref(),
		Company:   s.Company,
		Client:    party(&client),
		Items:     documentItems(items),
		Totals:    documentTotals(pricing.ComputeTotals(items, q.Discount, s.issueDate(q))),
		Signature: &pdf.Signature{Name: signerName, Image: png},
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	filename := q.Ref() + "-signe.pdf"
	if _, err := s.Docs.Save(filename, doc); err != nil {
		log.Printf("quotes: store %s: %v", filename, err)
	}
	if !s.Mailer.Enabled() || s.Company.Email == "" {
		return nil
	}
	return s.Mailer.Send(ctx, mail.Message{
		To:      []string{s.Company.Email},
		Subject: "Devis signé " + q.Ref(),
		Text:    fmt.Sprintf("Le devis %s a été signé par %s.", q.Ref(), signerName),
		Attachments: []mail.Attachment{{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        doc,
		}},
	})
}

// Public resolves a token for the public pages.
func (s *QuoteService) Public(ctx context.Context, token string) (*PublicQuote, error) {
	q, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	out := &PublicQuote{Ref: q.Ref(), Amount: q.Amount, Status: q.Status, Signed: q.Signed()}
	var client models.Client
	if err := s.DB.First(&client, q.ClientID).Error; err == nil {
		out.ClientName = client.Name
	}
	var service models.Service
	if err := s.DB.First(&service, q.ServiceID).Error; err == nil {
		out.Service = service.Name
	}
	if q.SignerName != nil {
		out.SignerName = *q.SignerName
	}
	out.PDFURL = "/public/quotes/" + url.PathEscape(q.Ref()+".pdf")
	return out, nil
}
