package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/models"
)

const exportSheet = "Devis"

var exportHeader = []any{"Réf.", "Client", "Service", "Heures", "Remise (%)", "Matériaux (€)", "Montant (€)", "Statut", "Date", "Accusé", "Signé par"}

// ExportQuotes writes one spreadsheet row per quote of the account, newest first.
func ExportQuotes(db *gorm.DB, userID uint) ([]byte, error) {
	var quotes []models.Quote
	err := db.Where("user_id = ?", userID).Order("id DESC").
		Preload("Client").Preload("Service").Find(&quotes).Error
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E5E7EB"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "K1", bold); err != nil {
		return nil, err
	}
	for i, q := range quotes {
		var client, service, signer string
		if q.Client != nil {
			client = q.Client.Name
		}
		if q.Service != nil {
			service = q.Service.Name
		}
		if q.SignerName != nil {
			signer = *q.SignerName
		}
		ack := "Non"
		if q.Ack {
			ack = "Oui"
		}
		row := []any{q.Ref(), client, service, q.Hours, q.Discount, q.MaterialsTotal, q.Amount, q.Status.Label(), q.SentAt, ack, signer}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if n := len(quotes); n > 0 {
		if err := f.SetCellStyle(exportSheet, "F2", fmt.Sprintf("G%d", n+1), money); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "K", 16); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
