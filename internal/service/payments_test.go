package service

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Mendozape/PayComMobile/internal/data"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/domain/model"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/mocks"
	"github.com/Mendozape/PayComMobile/internal/ports"
	"github.com/Mendozape/PayComMobile/internal/testutil"
)

func newPaymentService(t *testing.T, backend ports.ResourceBackend, user *domainauth.User) *PaymentService {
	t.Helper()
	svc, err := NewPaymentService(PaymentServiceOptions{
		Backend:  backend,
		Sessions: staticSession{user: user, token: "tok"},
		Clock:    data.NewFixedTimeProvider(testutil.TestTime()),
	})
	require.NoError(t, err)
	return svc
}

func TestPaymentService_RegisterAndPaidMonths(t *testing.T) {
	backend := seededBackend(t)
	svc := newPaymentService(t, backend, testutil.Admin())
	ctx := context.Background()

	_, err := svc.Register(ctx, "1", "1", 2025, []int{3, 1, 2}, []int{2})
	require.NoError(t, err)

	months, err := svc.PaidMonths(ctx, "1", 2025, "1")
	require.NoError(t, err)
	assert.Equal(t, []model.PaidMonth{
		{Month: 1, Status: "Pagado"},
		{Month: 2, Status: model.WaivedStatus},
		{Month: 3, Status: "Pagado"},
	}, months)
	assert.True(t, months[1].Waived())

	history, err := svc.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2025-04-15", history[0].String("payment_date"))

	_, err = svc.Register(ctx, "1", "1", 2025, []int{3}, nil)
	require.True(t, apperrors.IsMutation(err))
	assert.Equal(t, "Month 3 is already paid.", apperrors.UserMessage(err, ""))
}

func TestPaymentService_PaidMonthsDecodesBackendShapes(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockResourceBackend(ctrl)
	svc := newPaymentService(t, backend, testutil.Admin())

	backend.EXPECT().Fetch(gomock.Any(), "tok", "address_payments/paid-months/1/2025", url.Values{"fee_id": {"1"}}).
		Return(model.Record{"months": []any{
			map[string]any{"month": float64(2), "status": model.WaivedStatus},
			map[string]any{"month": float64(1), "status": "Pagado"},
			map[string]any{"month": "4", "status": "Pagado"},
			float64(7),
			map[string]any{"status": "Pagado"},
			"x",
		}}, nil)

	months, err := svc.PaidMonths(context.Background(), "1", 2025, "1")
	require.NoError(t, err)
	assert.Equal(t, []model.PaidMonth{
		{Month: 1, Status: "Pagado"},
		{Month: 2, Status: model.WaivedStatus},
		{Month: 4, Status: "Pagado"},
		{Month: 7},
	}, months)
}

func TestPaymentService_RegisterSendsWaivedSeparately(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockResourceBackend(ctrl)
	svc := newPaymentService(t, backend, testutil.Admin())

	want := model.PaymentInput{
		AddressID:    "4",
		FeeID:        "2",
		Year:         2025,
		PaymentDate:  "2025-04-15",
		Months:       []int{1, 4},
		WaivedMonths: []int{2},
	}
	backend.EXPECT().Send(gomock.Any(), "tok", http.MethodPost, "address_payments", want).
		Return(model.Record{"message": "ok"}, nil)

	_, err := svc.Register(context.Background(), "4", "2", 2025, []int{4, 1, 2}, []int{2})
	require.NoError(t, err)
}

func TestPaymentService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockResourceBackend(ctrl) // nothing reaches the backend
	ctx := context.Background()

	admin := newPaymentService(t, backend, testutil.Admin())
	_, err := admin.Register(ctx, "1", "1", 2025, nil, nil)
	assert.True(t, apperrors.IsValidation(err))
	_, err = admin.Register(ctx, "1", "1", 2025, []int{13}, nil)
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, apperrors.IsValidation(admin.Cancel(ctx, "9", "abc ")))
	_, err = admin.PaidMonths(ctx, "", 2025, "1")
	assert.True(t, apperrors.IsValidation(err))

	resident := newPaymentService(t, backend, testutil.Resident())
	_, err = resident.Register(ctx, "1", "1", 2025, []int{1}, nil)
	assert.True(t, apperrors.IsForbidden(err))
	_, err = resident.Debtors(ctx, "", 2025)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestPaymentService_CancelIsNotCapabilityGated(t *testing.T) {
	backend := seededBackend(t)
	ctx := context.Background()

	_, err := newPaymentService(t, backend, testutil.Admin()).Register(ctx, "1", "1", 2025, []int{1}, nil)
	require.NoError(t, err)

	resident := newPaymentService(t, backend, testutil.Resident())
	require.NoError(t, resident.Cancel(ctx, "1", "wrong address"))

	admin := newPaymentService(t, backend, testutil.Admin())
	months, err := admin.PaidMonths(ctx, "1", 2025, "1")
	require.NoError(t, err)
	assert.Empty(t, months)
}

func TestPaymentService_Debtors(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockResourceBackend(ctrl)
	svc := newPaymentService(t, backend, testutil.Admin())

	backend.EXPECT().List(gomock.Any(), "tok", "reports/debtors", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, q url.Values) ([]model.Record, error) {
			assert.Equal(t, "Mantenimiento", q["payment_type"][0])
			assert.Equal(t, "2025", q["year"][0])
			return []model.Record{
				{"address_id": float64(1), "month_1": true, "month_2": true, "month_2_status": model.WaivedStatus, "months_overdue": float64(4)},
				{"address_id": float64(2), "month_1": false, "months_overdue": "0"},
			}, nil
		})

	report, err := svc.Debtors(context.Background(), "Mantenimiento", 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, report.Year)
	require.Len(t, report.Rows, 2)
	// April 15: January to March are elapsed.
	assert.Equal(t, []int{5, 3}, report.Overdue)
	assert.Equal(t, model.MonthWaived, report.Rows[0].Month(2025, 2, testutil.TestTime()))
}
