// Package mocks provides gomock doubles for the ports consumed by the session
// and resource services.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().CurrentUser(gomock.Any(), "tok").Return(user, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=backend_mock.go github.com/Mendozape/PayComMobile/internal/ports Backend
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=resource_backend_mock.go github.com/Mendozape/PayComMobile/internal/ports ResourceBackend
