package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	pkgkafka "github.com/prasetia/inventaris/pkg/kafka"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/auth"
	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/event"
	"github.com/prasetia/inventaris/internal/mailer"
	"github.com/prasetia/inventaris/internal/repository"
)

// --- Repository mocks ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) MarkEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	args := m.Called(ctx, id, verifiedAt)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash, rememberToken string) error {
	args := m.Called(ctx, id, passwordHash, rememberToken)
	return args.Error(0)
}

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

type mockPasswordResetRepository struct {
	mock.Mock
}

func (m *mockPasswordResetRepository) Upsert(ctx context.Context, email, tokenHash string, createdAt time.Time) error {
	args := m.Called(ctx, email, tokenHash, createdAt)
	return args.Error(0)
}

func (m *mockPasswordResetRepository) GetByEmail(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetToken), args.Error(1)
}

func (m *mockPasswordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, search, category string, params pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, search, category, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Options(ctx context.Context) ([]domain.ProductOption, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductOption), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockStockTransactionRepository struct {
	mock.Mock
}

func (m *mockStockTransactionRepository) CreateWithAdjustment(ctx context.Context, txn *domain.StockTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *mockStockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.StockTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockTransaction), args.Error(1)
}

func (m *mockStockTransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, params pagination.Params) ([]domain.StockTransaction, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockTransaction), args.Int(1), args.Error(2)
}

func (m *mockStockTransactionRepository) SummaryAll(ctx context.Context, from, to time.Time) (*domain.TransactionSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionSummary), args.Error(1)
}

func (m *mockStockTransactionRepository) ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.StockCardEntry, int, error) {
	args := m.Called(ctx, productID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockCardEntry), args.Int(1), args.Error(2)
}

func (m *mockStockTransactionRepository) Summary(ctx context.Context, productID string, from, to time.Time) (*domain.StockSummary, error) {
	args := m.Called(ctx, productID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockSummary), args.Error(1)
}

type mockOpnameRepository struct {
	mock.Mock
}

func (m *mockOpnameRepository) Create(ctx context.Context, opname *domain.StockOpname) error {
	args := m.Called(ctx, opname)
	return args.Error(0)
}

func (m *mockOpnameRepository) GetByID(ctx context.Context, id string) (*domain.StockOpname, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockOpname), args.Error(1)
}

func (m *mockOpnameRepository) List(ctx context.Context, params pagination.Params) ([]domain.StockOpname, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockOpname), args.Int(1), args.Error(2)
}

func (m *mockOpnameRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOpnameRepository) Summary(ctx context.Context) (*domain.OpnameSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OpnameSummary), args.Error(1)
}

type mockProfitReportRepository struct {
	mock.Mock
}

func (m *mockProfitReportRepository) Compute(ctx context.Context, from, to time.Time) (int64, int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockProfitReportRepository) Upsert(ctx context.Context, report *domain.ProfitReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockProfitReportRepository) List(ctx context.Context, reportType string, params pagination.Params) ([]domain.ProfitReport, int, error) {
	args := m.Called(ctx, reportType, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ProfitReport), args.Int(1), args.Error(2)
}

func (m *mockProfitReportRepository) GetByID(ctx context.Context, id string) (*domain.ProfitReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitReport), args.Error(1)
}

func (m *mockProfitReportRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProfitReportRepository) Summary(ctx context.Context, reportType string) (*domain.ProfitSummary, error) {
	args := m.Called(ctx, reportType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitSummary), args.Error(1)
}

type mockQRLogRepository struct {
	mock.Mock
}

func (m *mockQRLogRepository) Create(ctx context.Context, log *domain.QRLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockQRLogRepository) GetByID(ctx context.Context, id string) (*domain.QRLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRLog), args.Error(1)
}

func (m *mockQRLogRepository) ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.QRLog, int, error) {
	args := m.Called(ctx, productID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.QRLog), args.Int(1), args.Error(2)
}

func (m *mockQRLogRepository) List(ctx context.Context, params pagination.Params) ([]domain.QRLog, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.QRLog), args.Int(1), args.Error(2)
}

func (m *mockQRLogRepository) Stats(ctx context.Context) ([]domain.QRScanStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QRScanStat), args.Error(1)
}

// --- Event and mail capture stubs ---

// capturePublisher records every event handed to the producer.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []*pkgkafka.Event
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, ev *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) published(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}

// captureDispatcher records mail synchronously so tests can assert on it.
type captureDispatcher struct {
	mu       sync.Mutex
	messages []*mailer.Message
}

func (d *captureDispatcher) Dispatch(msg *mailer.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *captureDispatcher) sent() []*mailer.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.messages
}

// --- Common fixtures ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-unit-tests", 15*time.Minute, 7*24*time.Hour)
}

func newTestSigner() *auth.URLSigner {
	return auth.NewURLSigner("http://localhost:8080", "test-signing-secret", time.Hour)
}

func newTestProducer(pub *capturePublisher) *event.Producer {
	return event.NewProducer(pub, newTestLogger())
}

func strPtr(s string) *string {
	return &s
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
