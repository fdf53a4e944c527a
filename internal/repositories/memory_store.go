package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"parfum/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the repository
// interfaces and the SettlementStore. Transactions snapshot the maps and
// restore them on error, so rollback semantics match the database
// implementation. Used by service tests and local development wiring.
type MemoryStore struct {
	mu sync.RWMutex

	products       map[string]models.Product
	categories     map[string]models.Category
	cartItems      map[string]models.CartItem
	wishlistItems  map[string]models.WishlistItem
	orders         map[string]models.Order
	coupons        map[string]models.Coupon
	productOffers  map[string]models.ProductOffer
	categoryOffers map[string]models.CategoryOffer
	referralOffers map[string]models.ReferralOffer
	wallets        map[string]models.Wallet // keyed by user id
	walletTxns     map[string]models.WalletTransaction
	returnRequests map[string]models.ReturnRequest

	failpoints map[string]error
	nextCartID uint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:       make(map[string]models.Product),
		categories:     make(map[string]models.Category),
		cartItems:      make(map[string]models.CartItem),
		wishlistItems:  make(map[string]models.WishlistItem),
		orders:         make(map[string]models.Order),
		coupons:        make(map[string]models.Coupon),
		productOffers:  make(map[string]models.ProductOffer),
		categoryOffers: make(map[string]models.CategoryOffer),
		referralOffers: make(map[string]models.ReferralOffer),
		wallets:        make(map[string]models.Wallet),
		walletTxns:     make(map[string]models.WalletTransaction),
		returnRequests: make(map[string]models.ReturnRequest),
		failpoints:     make(map[string]error),
	}
}

// FailOn makes the named settlement step return err the next time it
// runs inside a transaction. Tests use it to inject failures between
// mutation steps and assert full rollback.
func (s *MemoryStore) FailOn(step string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failpoints[step] = err
}

func (s *MemoryStore) failpoint(step string) error {
	return s.failpoints[step]
}

func pairKey(userID, productID string) string {
	return userID + "|" + productID
}

// --- SettlementStore ---

// InTransaction runs fn under the store lock, restoring the pre-call
// state if fn returns an error.
func (s *MemoryStore) InTransaction(fn func(tx SettlementTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memSettlementTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	products       map[string]models.Product
	cartItems      map[string]models.CartItem
	wishlistItems  map[string]models.WishlistItem
	orders         map[string]models.Order
	coupons        map[string]models.Coupon
	referralOffers map[string]models.ReferralOffer
	wallets        map[string]models.Wallet
	walletTxns     map[string]models.WalletTransaction
	returnRequests map[string]models.ReturnRequest
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *MemoryStore) snapshot() memSnapshot {
	return memSnapshot{
		products:       copyMap(s.products),
		cartItems:      copyMap(s.cartItems),
		wishlistItems:  copyMap(s.wishlistItems),
		orders:         copyMap(s.orders),
		coupons:        copyMap(s.coupons),
		referralOffers: copyMap(s.referralOffers),
		wallets:        copyMap(s.wallets),
		walletTxns:     copyMap(s.walletTxns),
		returnRequests: copyMap(s.returnRequests),
	}
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.cartItems = snap.cartItems
	s.wishlistItems = snap.wishlistItems
	s.orders = snap.orders
	s.coupons = snap.coupons
	s.referralOffers = snap.referralOffers
	s.wallets = snap.wallets
	s.walletTxns = snap.walletTxns
	s.returnRequests = snap.returnRequests
}

// memSettlementTx operates on the already-locked store.
type memSettlementTx struct {
	store *MemoryStore
}

func (t *memSettlementTx) ProductForUpdate(id string) (*models.Product, error) {
	if err := t.store.failpoint("ProductForUpdate"); err != nil {
		return nil, err
	}
	p, ok := t.store.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (t *memSettlementTx) SaveProduct(product *models.Product) error {
	if err := t.store.failpoint("SaveProduct"); err != nil {
		return err
	}
	t.store.products[product.ID] = *product
	return nil
}

func (t *memSettlementTx) CreateOrder(order *models.Order) error {
	if err := t.store.failpoint("CreateOrder"); err != nil {
		return err
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	t.store.orders[order.ID] = *order
	return nil
}

func (t *memSettlementTx) OrderForUpdate(id string) (*models.Order, error) {
	o, ok := t.store.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &o, nil
}

func (t *memSettlementTx) SaveOrder(order *models.Order) error {
	if err := t.store.failpoint("SaveOrder"); err != nil {
		return err
	}
	order.UpdatedAt = time.Now()
	t.store.orders[order.ID] = *order
	return nil
}

func (t *memSettlementTx) RedeemCoupon(couponID string) error {
	if err := t.store.failpoint("RedeemCoupon"); err != nil {
		return err
	}
	c, ok := t.store.coupons[couponID]
	if !ok {
		return fmt.Errorf("coupon with ID %s: %w", couponID, ErrNotFound)
	}
	if c.UsageLimit > 0 && c.TimesUsed >= c.UsageLimit {
		return fmt.Errorf("coupon %s: %w", couponID, ErrCouponExhausted)
	}
	c.TimesUsed++
	t.store.coupons[couponID] = c
	return nil
}

func (t *memSettlementTx) WalletForUpdate(userID string) (*models.Wallet, error) {
	if err := t.store.failpoint("WalletForUpdate"); err != nil {
		return nil, err
	}
	w, ok := t.store.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
	}
	return &w, nil
}

func (t *memSettlementTx) SaveWallet(wallet *models.Wallet) error {
	if err := t.store.failpoint("SaveWallet"); err != nil {
		return err
	}
	wallet.UpdatedAt = time.Now()
	t.store.wallets[wallet.UserID] = *wallet
	return nil
}

func (t *memSettlementTx) CreateWalletTransaction(txn *models.WalletTransaction) error {
	if err := t.store.failpoint("CreateWalletTransaction"); err != nil {
		return err
	}
	if _, exists := t.store.walletTxns[txn.TransactionID]; exists {
		return fmt.Errorf("wallet transaction %s already exists", txn.TransactionID)
	}
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	t.store.walletTxns[txn.TransactionID] = *txn
	return nil
}

func (t *memSettlementTx) SaveWalletTransaction(txn *models.WalletTransaction) error {
	txn.UpdatedAt = time.Now()
	t.store.walletTxns[txn.TransactionID] = *txn
	return nil
}

func (t *memSettlementTx) CreateReturnRequest(rr *models.ReturnRequest) error {
	if err := t.store.failpoint("CreateReturnRequest"); err != nil {
		return err
	}
	if rr.ID == "" {
		rr.ID = uuid.New().String()
	}
	rr.CreatedAt = time.Now()
	rr.UpdatedAt = rr.CreatedAt
	t.store.returnRequests[rr.ID] = *rr
	return nil
}

func (t *memSettlementTx) ReturnRequestForUpdate(id string) (*models.ReturnRequest, error) {
	rr, ok := t.store.returnRequests[id]
	if !ok {
		return nil, fmt.Errorf("return request with ID %s: %w", id, ErrNotFound)
	}
	return &rr, nil
}

func (t *memSettlementTx) SaveReturnRequest(rr *models.ReturnRequest) error {
	if err := t.store.failpoint("SaveReturnRequest"); err != nil {
		return err
	}
	rr.UpdatedAt = time.Now()
	t.store.returnRequests[rr.ID] = *rr
	return nil
}

func (t *memSettlementTx) DeleteCartItems(userID string) error {
	if err := t.store.failpoint("DeleteCartItems"); err != nil {
		return err
	}
	for k, item := range t.store.cartItems {
		if item.UserID == userID {
			delete(t.store.cartItems, k)
		}
	}
	return nil
}

func (t *memSettlementTx) DeleteWishlistItem(userID, productID string) error {
	delete(t.store.wishlistItems, pairKey(userID, productID))
	return nil
}

// --- ProductRepository ---

func (s *MemoryStore) GetAll(filter ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if filter.Gender != "" && p.Gender != filter.Gender {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *MemoryStore) GetByID(id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) Create(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStore) Update(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

// --- CartRepository ---

func (s *MemoryStore) ItemsByUser(userID string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.CartItem
	for _, item := range s.cartItems {
		if item.UserID == userID {
			if p, ok := s.products[item.ProductID]; ok {
				item.Product = p
			}
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (s *MemoryStore) Get(userID, productID string) (*models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.cartItems[pairKey(userID, productID)]
	if !ok {
		return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	if p, exists := s.products[item.ProductID]; exists {
		item.Product = p
	}
	return &item, nil
}

func (s *MemoryStore) Upsert(item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(item.UserID, item.ProductID)
	if existing, ok := s.cartItems[key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		s.nextCartID++
		item.ID = s.nextCartID
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = time.Now()
	s.cartItems[key] = *item
	return nil
}

func (s *MemoryStore) DeleteCartItem(userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(userID, productID)
	if _, ok := s.cartItems[key]; !ok {
		return fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	delete(s.cartItems, key)
	return nil
}

func (s *MemoryStore) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, item := range s.cartItems {
		if item.UserID == userID {
			delete(s.cartItems, k)
		}
	}
	return nil
}

// --- WishlistRepository ---

func (s *MemoryStore) WishlistByUser(userID string) ([]models.WishlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.WishlistItem
	for _, item := range s.wishlistItems {
		if item.UserID == userID {
			if p, ok := s.products[item.ProductID]; ok {
				item.Product = p
			}
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (s *MemoryStore) AddWishlistItem(item *models.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(item.UserID, item.ProductID)
	if _, ok := s.wishlistItems[key]; ok {
		return nil
	}
	item.CreatedAt = time.Now()
	s.wishlistItems[key] = *item
	return nil
}

func (s *MemoryStore) RemoveWishlistItem(userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.wishlistItems, pairKey(userID, productID))
	return nil
}

// --- OrderRepository ---

func (s *MemoryStore) AllOrders() ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryStore) OrderByID(id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if p, exists := s.products[o.ProductID]; exists {
		o.Product = p
	}
	return &o, nil
}

func (s *MemoryStore) OrdersByCustomer(customerID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryStore) OrdersByGroup(orderGroupID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, o := range s.orders {
		if o.OrderID == orderGroupID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *MemoryStore) CreateOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryStore) UpdateOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return fmt.Errorf("order with ID %s not found for update: %w", order.ID, ErrNotFound)
	}
	order.UpdatedAt = time.Now()
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryStore) DeliveredBetween(from, to time.Time) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, o := range s.orders {
		if o.Status != models.StatusDelivered || o.DeliveredAt == nil {
			continue
		}
		if o.DeliveredAt.Before(from) || !o.DeliveredAt.Before(to) {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// --- CouponRepository ---

func (s *MemoryStore) CouponByCode(code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.coupons {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("coupon %s: %w", code, ErrNotFound)
}

func (s *MemoryStore) CouponByID(id string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.coupons[id]
	if !ok {
		return nil, fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (s *MemoryStore) AllCoupons() ([]models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coupons := make([]models.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].Code < coupons[j].Code })
	return coupons, nil
}

func (s *MemoryStore) CreateCoupon(coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	s.coupons[coupon.ID] = *coupon
	return nil
}

func (s *MemoryStore) UpdateCoupon(coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coupons[coupon.ID]; !ok {
		return fmt.Errorf("coupon with ID %s not found for update: %w", coupon.ID, ErrNotFound)
	}
	s.coupons[coupon.ID] = *coupon
	return nil
}

func (s *MemoryStore) DeleteCoupon(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coupons[id]; !ok {
		return fmt.Errorf("coupon with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(s.coupons, id)
	return nil
}

// --- OfferRepository ---

func (s *MemoryStore) ActiveProductOffers(productID string, now time.Time) ([]models.ProductOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var offers []models.ProductOffer
	for _, o := range s.productOffers {
		if o.ProductID == productID && o.InWindow(now) {
			offers = append(offers, o)
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].DiscountPercentage > offers[j].DiscountPercentage
	})
	return offers, nil
}

func (s *MemoryStore) ActiveCategoryOffers(categoryID string, now time.Time) ([]models.CategoryOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var offers []models.CategoryOffer
	for _, o := range s.categoryOffers {
		if o.CategoryID == categoryID && o.InWindow(now) {
			offers = append(offers, o)
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].DiscountPercentage > offers[j].DiscountPercentage
	})
	return offers, nil
}

func (s *MemoryStore) CreateProductOffer(offer *models.ProductOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	s.productOffers[offer.ID] = *offer
	return nil
}

func (s *MemoryStore) CreateCategoryOffer(offer *models.CategoryOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	s.categoryOffers[offer.ID] = *offer
	return nil
}

func (s *MemoryStore) CreateReferralOffer(offer *models.ReferralOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	s.referralOffers[offer.ID] = *offer
	return nil
}

func (s *MemoryStore) ListProductOffers() ([]models.ProductOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]models.ProductOffer, 0, len(s.productOffers))
	for _, o := range s.productOffers {
		offers = append(offers, o)
	}
	return offers, nil
}

func (s *MemoryStore) ListCategoryOffers() ([]models.CategoryOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]models.CategoryOffer, 0, len(s.categoryOffers))
	for _, o := range s.categoryOffers {
		offers = append(offers, o)
	}
	return offers, nil
}

func (s *MemoryStore) ListReferralOffers() ([]models.ReferralOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]models.ReferralOffer, 0, len(s.referralOffers))
	for _, o := range s.referralOffers {
		offers = append(offers, o)
	}
	return offers, nil
}

func (s *MemoryStore) GetReferralByCode(code string) (*models.ReferralOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.referralOffers {
		if strings.EqualFold(o.Code, code) {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("referral offer %s: %w", code, ErrNotFound)
}

func (s *MemoryStore) IncrementReferralUse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.referralOffers[id]
	if !ok {
		return fmt.Errorf("referral offer %s: %w", id, ErrNotFound)
	}
	if o.MaxUses > 0 && o.TimesUsed >= o.MaxUses {
		return fmt.Errorf("referral offer %s: %w", id, ErrCouponExhausted)
	}
	o.TimesUsed++
	s.referralOffers[id] = o
	return nil
}

func (s *MemoryStore) DeleteProductOffer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.productOffers[id]; !ok {
		return fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	delete(s.productOffers, id)
	return nil
}

func (s *MemoryStore) DeleteCategoryOffer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categoryOffers[id]; !ok {
		return fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	delete(s.categoryOffers, id)
	return nil
}

func (s *MemoryStore) DeleteReferralOffer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.referralOffers[id]; !ok {
		return fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	delete(s.referralOffers, id)
	return nil
}

// --- WalletRepository ---

func (s *MemoryStore) WalletByUser(userID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
	}
	return &w, nil
}

func (s *MemoryStore) CreateWallet(wallet *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	wallet.CreatedAt = time.Now()
	wallet.UpdatedAt = wallet.CreatedAt
	s.wallets[wallet.UserID] = *wallet
	return nil
}

func (s *MemoryStore) TransactionsByWallet(walletID string) ([]models.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txns []models.WalletTransaction
	for _, t := range s.walletTxns {
		if t.WalletID == walletID {
			txns = append(txns, t)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
	return txns, nil
}

// --- ReturnRequestRepository ---

func (s *MemoryStore) ReturnRequestByID(id string) (*models.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rr, ok := s.returnRequests[id]
	if !ok {
		return nil, fmt.Errorf("return request with ID %s: %w", id, ErrNotFound)
	}
	return &rr, nil
}

func (s *MemoryStore) ReturnRequestByOrder(orderID string) (*models.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rr := range s.returnRequests {
		if rr.OrderID == orderID {
			return &rr, nil
		}
	}
	return nil, fmt.Errorf("return request for order %s: %w", orderID, ErrNotFound)
}

func (s *MemoryStore) ReturnRequestsByStatus(status models.ReturnStatus) ([]models.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rrs []models.ReturnRequest
	for _, rr := range s.returnRequests {
		if rr.Status == status {
			rrs = append(rrs, rr)
		}
	}
	return rrs, nil
}

func (s *MemoryStore) AllReturnRequests() ([]models.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rrs := make([]models.ReturnRequest, 0, len(s.returnRequests))
	for _, rr := range s.returnRequests {
		rrs = append(rrs, rr)
	}
	return rrs, nil
}

// --- interface adapters ---
//
// Several repository interfaces share method names (GetByID, Create,
// Delete), so MemoryStore exposes each one through a small view instead
// of implementing them all on the same receiver.

// Carts returns the store viewed as a CartRepository.
func (s *MemoryStore) Carts() CartRepository { return memCartRepo{s} }

// Wishlists returns the store viewed as a WishlistRepository.
func (s *MemoryStore) Wishlists() WishlistRepository { return memWishlistRepo{s} }

// Orders returns the store viewed as an OrderRepository.
func (s *MemoryStore) Orders() OrderRepository { return memOrderRepo{s} }

// Coupons returns the store viewed as a CouponRepository.
func (s *MemoryStore) Coupons() CouponRepository { return memCouponRepo{s} }

// Wallets returns the store viewed as a WalletRepository.
func (s *MemoryStore) Wallets() WalletRepository { return memWalletRepo{s} }

// Returns returns the store viewed as a ReturnRequestRepository.
func (s *MemoryStore) Returns() ReturnRequestRepository { return memReturnRepo{s} }

type memCartRepo struct{ s *MemoryStore }

func (r memCartRepo) ItemsByUser(userID string) ([]models.CartItem, error) {
	return r.s.ItemsByUser(userID)
}
func (r memCartRepo) Get(userID, productID string) (*models.CartItem, error) {
	return r.s.Get(userID, productID)
}
func (r memCartRepo) Upsert(item *models.CartItem) error { return r.s.Upsert(item) }
func (r memCartRepo) Delete(userID, productID string) error {
	return r.s.DeleteCartItem(userID, productID)
}
func (r memCartRepo) Clear(userID string) error { return r.s.Clear(userID) }

type memWishlistRepo struct{ s *MemoryStore }

func (r memWishlistRepo) ItemsByUser(userID string) ([]models.WishlistItem, error) {
	return r.s.WishlistByUser(userID)
}
func (r memWishlistRepo) Add(item *models.WishlistItem) error { return r.s.AddWishlistItem(item) }
func (r memWishlistRepo) Remove(userID, productID string) error {
	return r.s.RemoveWishlistItem(userID, productID)
}

type memOrderRepo struct{ s *MemoryStore }

func (r memOrderRepo) GetAll() ([]models.Order, error)         { return r.s.AllOrders() }
func (r memOrderRepo) GetByID(id string) (*models.Order, error) { return r.s.OrderByID(id) }
func (r memOrderRepo) ByCustomer(customerID string) ([]models.Order, error) {
	return r.s.OrdersByCustomer(customerID)
}
func (r memOrderRepo) ByGroup(orderGroupID string) ([]models.Order, error) {
	return r.s.OrdersByGroup(orderGroupID)
}
func (r memOrderRepo) Create(order *models.Order) error { return r.s.CreateOrder(order) }
func (r memOrderRepo) Update(order *models.Order) error { return r.s.UpdateOrder(order) }
func (r memOrderRepo) DeliveredBetween(from, to time.Time) ([]models.Order, error) {
	return r.s.DeliveredBetween(from, to)
}

type memCouponRepo struct{ s *MemoryStore }

func (r memCouponRepo) GetByCode(code string) (*models.Coupon, error) { return r.s.CouponByCode(code) }
func (r memCouponRepo) GetByID(id string) (*models.Coupon, error)     { return r.s.CouponByID(id) }
func (r memCouponRepo) GetAll() ([]models.Coupon, error)              { return r.s.AllCoupons() }
func (r memCouponRepo) Create(coupon *models.Coupon) error            { return r.s.CreateCoupon(coupon) }
func (r memCouponRepo) Update(coupon *models.Coupon) error            { return r.s.UpdateCoupon(coupon) }
func (r memCouponRepo) Delete(id string) error                        { return r.s.DeleteCoupon(id) }

type memWalletRepo struct{ s *MemoryStore }

func (r memWalletRepo) GetByUser(userID string) (*models.Wallet, error) {
	return r.s.WalletByUser(userID)
}
func (r memWalletRepo) Create(wallet *models.Wallet) error { return r.s.CreateWallet(wallet) }
func (r memWalletRepo) TransactionsByWallet(walletID string) ([]models.WalletTransaction, error) {
	return r.s.TransactionsByWallet(walletID)
}

type memReturnRepo struct{ s *MemoryStore }

func (r memReturnRepo) GetByID(id string) (*models.ReturnRequest, error) {
	return r.s.ReturnRequestByID(id)
}
func (r memReturnRepo) GetByOrder(orderID string) (*models.ReturnRequest, error) {
	return r.s.ReturnRequestByOrder(orderID)
}
func (r memReturnRepo) ByStatus(status models.ReturnStatus) ([]models.ReturnRequest, error) {
	return r.s.ReturnRequestsByStatus(status)
}
func (r memReturnRepo) GetAll() ([]models.ReturnRequest, error) { return r.s.AllReturnRequests() }
