// Package devseed provides the sample neighbourhood served by the dev backend.
package devseed

import (
	"context"
	"log/slog"

	"github.com/Mendozape/PayComMobile/internal/domain/model"
)

// Target receives seeded rows.
type Target interface {
	Insert(ctx context.Context, collection string, rec model.Record) (model.Record, error)
}

// Collections returns fresh copies of the sample rows keyed by collection.
func Collections() map[string][]model.Record {
	return map[string][]model.Record{
		model.Streets: {
			{"name": "Av. Juarez"},
			{"name": "Calle Hidalgo"},
			{"name": "Privada Morelos"},
		},
		model.Addresses: {
			{"street_id": float64(1), "street_number": "12", "full_address": "Av. Juarez 12", "type": "CASA", "status": model.StatusOccupied, "user_id": float64(2)},
			{"street_id": float64(1), "street_number": "14", "full_address": "Av. Juarez 14", "type": "CASA", "status": "Deshabitada", "user_id": float64(1)},
			{"street_id": float64(2), "street_number": "3", "full_address": "Calle Hidalgo 3", "type": model.AddressTypeLand, "status": "Deshabitada", "user_id": float64(1)},
		},
		model.Fees: {
			{"name": "Mantenimiento", "amount_occupied": float64(500), "amount_empty": float64(300), "amount_land": float64(150)},
			{"name": "Vigilancia", "amount_occupied": float64(200), "amount_empty": float64(200), "amount_land": float64(100)},
		},
		model.ExpenseCategories: {
			{"name": "Jardineria"},
			{"name": "Alumbrado"},
		},
		model.Expenses: {
			{"expense_category_id": float64(1), "description": "Poda de arboles", "amount": float64(1200), "expense_date": "2025-01-10"},
		},
		model.Roles: {
			{"name": "Admin"},
			{"name": "Tesorero"},
			{"name": "Residente"},
		},
		model.Residents: {
			{"name": "Administrador", "email": "admin@example.com", "role": "Admin"},
			{"name": "Laura Perez", "email": "laura@example.com", "role": "Residente", "phone": "5550001111"},
		},
	}
}

// Run inserts Collections into target. Failures are logged and counted; the
// returned count is the number of rows that could not be seeded.
func Run(ctx context.Context, target Target, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	failures := 0
	for name, rows := range Collections() {
		for _, rec := range rows {
			if _, err := target.Insert(ctx, name, rec); err != nil {
				logger.WarnContext(ctx, "failed to seed row", "collection", name, "error", err)
				failures++
			}
		}
	}
	logger.DebugContext(ctx, "dev seed complete", "failures", failures)
	return failures
}
