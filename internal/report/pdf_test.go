package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		job  models.ReportJob
	}{
		{
			name: "Отчёт с данными за месяц",
			job: models.ReportJob{
				Email:        "owner@example.com",
				FirstName:    "Mario",
				LastName:     "Rossi",
				BusinessName: "Pasticceria Rossi",
				BusinessType: "bakery",
				Year:         2025,
				Month:        6,
				Record: &models.Record{
					Year:            2025,
					Month:           6,
					ServicesRevenue: 1000,
					ProductsRevenue: 500,
					GoodsCost:       300,
					Rent:            200,
				},
			},
		},
		{
			name: "Отчёт без данных за период",
			job: models.ReportJob{
				Email: "owner@example.com",
				Year:  2025,
				Month: 7,
			},
		},
		{
			name: "Отчёт с убытком",
			job: models.ReportJob{
				Email: "owner@example.com",
				Year:  2025,
				Month: 8,
				Record: &models.Record{
					Year:     2025,
					Month:    8,
					Rent:     900,
					Salaries: 1200,
				},
			},
		},
	}

	g := NewGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := g.Generate(tt.job)
			require.NoError(t, err)
			require.NotEmpty(t, data)
			// Валидный PDF начинается с сигнатуры %PDF
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		})
	}
}
