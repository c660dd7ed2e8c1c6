package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/audit"
	"github.com/threadcraft/backend/internal/domain/catalog"
	"github.com/threadcraft/backend/internal/domain/crm"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// memoryOrderRepository is an in-memory order.Repository for service tests
type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
	seq    map[int]int64
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{
		orders: make(map[uuid.UUID]*order.Order),
		seq:    make(map[int]int64),
	}
}

func (r *memoryOrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memoryOrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memoryOrderRepository) SaveWithLock(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memoryOrderRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepository) FindByOrderNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepository) FindAll(_ context.Context, filter order.Filter) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*order.Order, 0)
	for _, o := range r.orders {
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DesignerID != nil && (o.DesignerID == nil || *o.DesignerID != *filter.DesignerID) {
			continue
		}
		if filter.ManufacturerID != nil && (o.ManufacturerID == nil || *o.ManufacturerID != *filter.ManufacturerID) {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	return matched, int64(len(matched)), nil
}

func (r *memoryOrderRepository) CountByStatus(_ context.Context) (map[order.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[order.Status]int64)
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *memoryOrderRepository) SumCompletedTotal(_ context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.Status == order.StatusCompleted {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

func (r *memoryOrderRepository) NextSequence(_ context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[year]++
	return r.seq[year], nil
}

func (r *memoryOrderRepository) ExistsByCatalogItem(_ context.Context, catalogItemID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		for _, item := range o.Items {
			if item.CatalogItemID == catalogItemID {
				return true, nil
			}
		}
	}
	return false, nil
}

// collidingOrderRepository rejects the first collisions creates as if a
// concurrent writer had claimed the order number, then behaves normally
type collidingOrderRepository struct {
	*memoryOrderRepository
	collisions int
}

func (r *collidingOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if r.collisions > 0 {
		r.collisions--
		return shared.NewDomainError("ORDER_NUMBER_TAKEN", "Order number is already in use")
	}
	return r.memoryOrderRepository.Create(ctx, o)
}

// MockCustomerRepository is a mock implementation of crm.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*crm.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter crm.CustomerFilter) ([]*crm.Customer, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*crm.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter crm.CustomerFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalogRepository is a mock implementation of catalog.ItemRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Create(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogRepository) Update(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockCatalogRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockCatalogRepository) FindAll(ctx context.Context, filter catalog.ItemFilter) ([]*catalog.Item, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*catalog.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// noopLogRepository discards audit records
type noopLogRepository struct{}

func (noopLogRepository) Create(context.Context, *audit.Log) error { return nil }

func (noopLogRepository) FindByID(context.Context, uuid.UUID) (*audit.Log, error) {
	return nil, shared.ErrNotFound
}

func (noopLogRepository) FindAll(context.Context, audit.LogFilter) ([]*audit.Log, int64, error) {
	return nil, 0, nil
}

type orderTestEnv struct {
	svc          *Service
	orderRepo    *memoryOrderRepository
	customerRepo *MockCustomerRepository
	catalogRepo  *MockCatalogRepository
	userRepo     *MockUserRepository
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	env := &orderTestEnv{
		orderRepo:    newMemoryOrderRepository(),
		customerRepo: new(MockCustomerRepository),
		catalogRepo:  new(MockCatalogRepository),
		userRepo:     new(MockUserRepository),
	}
	recorder := auditapp.NewRecorder(&noopLogRepository{}, zap.NewNop())
	env.svc = NewService(env.orderRepo, env.customerRepo, env.catalogRepo, env.userRepo,
		recorder, decimal.NewFromFloat(0.1), zap.NewNop())
	return env
}

func salesPrincipal() Principal {
	return Principal{ID: uuid.New(), Name: "sales", Role: identity.RoleSalesperson}
}

func adminPrincipal() Principal {
	return Principal{ID: uuid.New(), Name: "admin", Role: identity.RoleAdmin}
}

func (e *orderTestEnv) stubCustomer(t *testing.T, ctx context.Context) *crm.Customer {
	t.Helper()
	customer, err := crm.NewCustomer("Acme Corp", "", uuid.New())
	require.NoError(t, err)
	e.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)
	return customer
}

func (e *orderTestEnv) stubCatalogItem(t *testing.T, ctx context.Context, sku string, price float64) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(sku, "Classic Tee", decimal.NewFromFloat(price))
	require.NoError(t, err)
	e.catalogRepo.On("FindByID", ctx, item.ID).Return(item, nil)
	return item
}

func (e *orderTestEnv) createOrder(t *testing.T, ctx context.Context, principal Principal) *Info {
	t.Helper()
	customer := e.stubCustomer(t, ctx)
	item := e.stubCatalogItem(t, ctx, "TEE-001", 20)

	info, err := e.svc.Create(ctx, principal, CreateOrderInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{CatalogItemID: item.ID, Size: "L", Color: "black", Quantity: 10},
		},
	})
	require.NoError(t, err)
	return info
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft with frozen prices and derived totals", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()

		info := env.createOrder(t, ctx, principal)

		assert.Equal(t, fmt.Sprintf("TC-%d-%06d", time.Now().Year(), 1), info.OrderNumber)
		assert.Equal(t, "draft", info.Status)
		assert.Equal(t, "Acme Corp", info.CustomerName)
		require.Len(t, info.Items, 1)
		assert.Equal(t, "TEE-001", info.Items[0].SKU)
		assert.True(t, info.Items[0].UnitPrice.Equal(decimal.NewFromInt(20)))
		assert.True(t, info.Subtotal.Equal(decimal.NewFromInt(200)))
		assert.True(t, info.TaxAmount.Equal(decimal.NewFromInt(20)))
		assert.True(t, info.Total.Equal(decimal.NewFromInt(220)))
		// Creating salesperson is assigned automatically
		require.NotNil(t, info.SalespersonID)
		assert.Equal(t, principal.ID, *info.SalespersonID)
	})

	t.Run("order numbers increment per year", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()

		first := env.createOrder(t, ctx, principal)
		second := env.createOrder(t, ctx, principal)

		year := time.Now().Year()
		assert.Equal(t, fmt.Sprintf("TC-%d-%06d", year, 1), first.OrderNumber)
		assert.Equal(t, fmt.Sprintf("TC-%d-%06d", year, 2), second.OrderNumber)
	})

	t.Run("retries with a fresh number when the insert collides", func(t *testing.T) {
		env := newOrderTestEnv(t)
		repo := &collidingOrderRepository{memoryOrderRepository: env.orderRepo, collisions: 1}
		svc := NewService(repo, env.customerRepo, env.catalogRepo, env.userRepo,
			auditapp.NewRecorder(&noopLogRepository{}, zap.NewNop()),
			decimal.NewFromFloat(0.1), zap.NewNop())
		customer := env.stubCustomer(t, ctx)

		info, err := svc.Create(ctx, salesPrincipal(), CreateOrderInput{CustomerID: customer.ID})

		require.NoError(t, err)
		// Sequence 1 was lost to the concurrent writer; the retry got 2
		assert.Equal(t, fmt.Sprintf("TC-%d-%06d", time.Now().Year(), 2), info.OrderNumber)
	})

	t.Run("gives up after repeated number collisions", func(t *testing.T) {
		env := newOrderTestEnv(t)
		repo := &collidingOrderRepository{memoryOrderRepository: env.orderRepo, collisions: orderNumberAttempts}
		svc := NewService(repo, env.customerRepo, env.catalogRepo, env.userRepo,
			auditapp.NewRecorder(&noopLogRepository{}, zap.NewNop()),
			decimal.NewFromFloat(0.1), zap.NewNop())
		customer := env.stubCustomer(t, ctx)

		_, err := svc.Create(ctx, salesPrincipal(), CreateOrderInput{CustomerID: customer.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NUMBER_TAKEN", domainErr.Code)
	})

	t.Run("customer can only order for own account", func(t *testing.T) {
		env := newOrderTestEnv(t)
		otherCustomer := uuid.New()
		principal := Principal{ID: uuid.New(), Name: "cust", Role: identity.RoleCustomer, CustomerID: &otherCustomer}

		_, err := env.svc.Create(ctx, principal, CreateOrderInput{CustomerID: uuid.New()})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("rejects archived customer", func(t *testing.T) {
		env := newOrderTestEnv(t)
		customer, err := crm.NewCustomer("Gone Corp", "", uuid.New())
		require.NoError(t, err)
		require.NoError(t, customer.Archive())
		env.customerRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)

		_, err = env.svc.Create(ctx, salesPrincipal(), CreateOrderInput{CustomerID: customer.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CUSTOMER_ARCHIVED", domainErr.Code)
	})

	t.Run("rejects non-orderable catalog item", func(t *testing.T) {
		env := newOrderTestEnv(t)
		customer := env.stubCustomer(t, ctx)

		item, err := catalog.NewItem("OLD-001", "Retired Tee", decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, item.Discontinue())
		env.catalogRepo.On("FindByID", ctx, item.ID).Return(item, nil)

		_, err = env.svc.Create(ctx, salesPrincipal(), CreateOrderInput{
			CustomerID: customer.ID,
			Items:      []ItemInput{{CatalogItemID: item.ID, Quantity: 1}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ITEM_NOT_ORDERABLE", domainErr.Code)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles items keeping frozen prices", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		// Catalog price changes after creation
		stored, err := env.orderRepo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		existingLine := stored.Items[0]

		hoodie, err := catalog.NewItem("HOOD-001", "Zip Hoodie", decimal.NewFromInt(45))
		require.NoError(t, err)
		env.catalogRepo.On("FindByID", ctx, hoodie.ID).Return(hoodie, nil)

		lineID := existingLine.ID
		info, err := env.svc.Update(ctx, principal, UpdateOrderInput{
			OrderID: created.ID,
			Items: []ItemInput{
				{ID: &lineID, Size: "XL", Color: "black", Quantity: 4},
				{CatalogItemID: hoodie.ID, Size: "M", Color: "navy", Quantity: 2},
			},
		})

		require.NoError(t, err)
		require.Len(t, info.Items, 2)
		bySKU := make(map[string]ItemInfo)
		for _, item := range info.Items {
			bySKU[item.SKU] = item
		}
		assert.Equal(t, 4, bySKU["TEE-001"].Quantity)
		assert.Equal(t, "XL", bySKU["TEE-001"].Size)
		assert.True(t, bySKU["TEE-001"].UnitPrice.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 2, bySKU["HOOD-001"].Quantity)
		// 4*20 + 2*45 = 170, tax 17
		assert.True(t, info.Total.Equal(decimal.NewFromInt(187)))
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		_, err := env.svc.Update(ctx, principal, UpdateOrderInput{
			OrderID: created.ID,
			Items:   []ItemInput{},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("updates notes without touching items", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		notes := "Rush job"
		info, err := env.svc.Update(ctx, principal, UpdateOrderInput{
			OrderID: created.ID,
			Notes:   &notes,
		})

		require.NoError(t, err)
		assert.Equal(t, "Rush job", info.Notes)
		assert.Len(t, info.Items, 1)
	})
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newOrderTestEnv(t)
	principal := salesPrincipal()
	created := env.createOrder(t, ctx, principal)

	designer, err := identity.NewActiveUser("designer1", "Passw0rd123", identity.RoleDesigner)
	require.NoError(t, err)
	env.userRepo.On("FindByID", ctx, designer.ID).Return(designer, nil)

	manufacturer, err := identity.NewActiveUser("maker1", "Passw0rd123", identity.RoleManufacturer)
	require.NoError(t, err)
	env.userRepo.On("FindByID", ctx, manufacturer.ID).Return(manufacturer, nil)

	info, err := env.svc.SubmitDesign(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending_design", info.Status)

	// Design cannot start without a designer
	_, err = env.svc.StartDesign(ctx, principal, created.ID)
	require.Error(t, err)

	_, err = env.svc.AssignDesigner(ctx, principal, AssignInput{OrderID: created.ID, UserID: designer.ID})
	require.NoError(t, err)

	info, err = env.svc.StartDesign(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_design", info.Status)

	info, err = env.svc.ApproveDesign(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "design_approved", info.Status)

	_, err = env.svc.AssignManufacturer(ctx, principal, AssignInput{OrderID: created.ID, UserID: manufacturer.ID})
	require.NoError(t, err)

	info, err = env.svc.StartProduction(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_production", info.Status)

	info, err = env.svc.Complete(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", info.Status)

	// Terminal states admit no further transitions
	_, err = env.svc.Cancel(ctx, principal, CancelInput{OrderID: created.ID, Reason: "too late"})
	require.Error(t, err)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels with reason", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		info, err := env.svc.Cancel(ctx, principal, CancelInput{OrderID: created.ID, Reason: "customer backed out"})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", info.Status)
		assert.Equal(t, "customer backed out", info.CancelReason)
		assert.NotNil(t, info.CancelledAt)
	})

	t.Run("requires a reason", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		_, err := env.svc.Cancel(ctx, principal, CancelInput{OrderID: created.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REASON", domainErr.Code)
	})
}

func TestService_AssignDesigner_RejectsWrongRole(t *testing.T) {
	ctx := context.Background()
	env := newOrderTestEnv(t)
	principal := salesPrincipal()
	created := env.createOrder(t, ctx, principal)

	sales, err := identity.NewActiveUser("sales2", "Passw0rd123", identity.RoleSalesperson)
	require.NoError(t, err)
	env.userRepo.On("FindByID", ctx, sales.ID).Return(sales, nil)

	_, err = env.svc.AssignDesigner(ctx, principal, AssignInput{OrderID: created.ID, UserID: sales.ID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes draft", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		require.NoError(t, env.svc.Delete(ctx, principal, created.ID))

		_, err := env.orderRepo.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("refuses submitted orders", func(t *testing.T) {
		env := newOrderTestEnv(t)
		principal := salesPrincipal()
		created := env.createOrder(t, ctx, principal)

		_, err := env.svc.SubmitDesign(ctx, principal, created.ID)
		require.NoError(t, err)

		err = env.svc.Delete(ctx, principal, created.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestService_Scoping(t *testing.T) {
	ctx := context.Background()
	env := newOrderTestEnv(t)
	sales := salesPrincipal()
	created := env.createOrder(t, ctx, sales)

	stored, err := env.orderRepo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	t.Run("owning customer sees the order", func(t *testing.T) {
		customerID := stored.CustomerID
		principal := Principal{ID: uuid.New(), Name: "cust", Role: identity.RoleCustomer, CustomerID: &customerID}

		info, err := env.svc.Get(ctx, principal, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, info.ID)

		infos, total, err := env.svc.List(ctx, principal, ListOrdersInput{Filter: order.NewFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, infos, 1)
	})

	t.Run("other customer is refused", func(t *testing.T) {
		otherID := uuid.New()
		principal := Principal{ID: uuid.New(), Name: "other", Role: identity.RoleCustomer, CustomerID: &otherID}

		_, err := env.svc.Get(ctx, principal, created.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)

		_, total, err := env.svc.List(ctx, principal, ListOrdersInput{Filter: order.NewFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("unassigned designer is refused", func(t *testing.T) {
		principal := Principal{ID: uuid.New(), Name: "designer", Role: identity.RoleDesigner}

		_, err := env.svc.Get(ctx, principal, created.ID)
		require.Error(t, err)

		_, total, err := env.svc.List(ctx, principal, ListOrdersInput{Filter: order.NewFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		info, err := env.svc.Get(ctx, adminPrincipal(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, info.ID)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	env := newOrderTestEnv(t)
	principal := salesPrincipal()

	first := env.createOrder(t, ctx, principal)
	env.createOrder(t, ctx, principal)

	// Walk the first order to completed
	stored, err := env.orderRepo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	stored.Status = order.StatusCompleted

	stats, err := env.svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["draft"])
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
	assert.True(t, stats.CompletedRevenue.Equal(decimal.NewFromInt(220)))
	assert.Equal(t, "$220.00", stats.RevenueDisplay)
}

func TestFormatRevenue(t *testing.T) {
	assert.Equal(t, "$0.00", formatRevenue(decimal.Zero))
	assert.Equal(t, "$1,234,567.89", formatRevenue(decimal.NewFromFloat(1234567.89)))
}
