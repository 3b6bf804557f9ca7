package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reserva/internal/auth"
	"reserva/internal/ratelimiter"
	"reserva/internal/store"

	"go.uber.org/zap"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	users := &fakeUsersStore{byID: map[int64]*store.User{}}
	businesses := &fakeBusinessesStore{byID: map[int64]*store.Business{}, users: users}
	services := &fakeServicesStore{byID: map[int64]*store.Service{}}

	storage := store.Storage{
		Users:      users,
		Tokens:     &fakeTokensStore{byHash: map[string]int64{}},
		Businesses: businesses,
		Services:   services,
		Bookings:   &fakeBookingsStore{byID: map[int64]*store.Booking{}, services: services},
		Reviews:    &fakeReviewsStore{byID: map[int64]*store.Review{}},
	}

	return &application{
		config: config{
			addr:        ":0",
			env:         "test",
			frontendURL: "http://localhost:5173",
			mail: mailConfig{
				resetExp:  time.Hour * 3,
				fromEmail: "noreply@reserva.test",
			},
			auth: authConfig{
				basic: basicConfig{user: "admin", pass: "admin"},
				token: tokenConfig{secret: "test-secret", exp: time.Hour * 24 * 3, iss: "Reserva"},
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		store:         storage,
		logger:        zap.NewNop().Sugar(),
		mailer:        &mockMailer{},
		authenticator: auth.NewJWTAuthenticator("test-secret", "Reserva", "Reserva", time.Hour*24*3),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(100, time.Minute),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected response code %d, got %d", expected, actual)
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

// registerAndLogin provisions an account through the public endpoints and
// returns its bearer token.
func registerAndLogin(t *testing.T, mux http.Handler, name, email, password, role string) string {
	t.Helper()

	rr := executeRequest(jsonRequest(t, http.MethodPost, "/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	}), mux)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed with status %d: %s", rr.Code, rr.Body.String())
	}

	rr = executeRequest(jsonRequest(t, http.MethodPost, "/login", map[string]any{
		"email":    email,
		"password": password,
	}), mux)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}

	token, _ := decodeBody(t, rr)["access_token"].(string)
	if token == "" {
		t.Fatal("login response carried no access token")
	}
	return token
}

func authedRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()

	req := jsonRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

type mockMailer struct {
	sent     int
	lastData any
}

func (m *mockMailer) Send(templateFile, username, email string, data any) (int, error) {
	m.sent++
	m.lastData = data
	return http.StatusOK, nil
}

type fakeUsersStore struct {
	nextID int64
	byID   map[int64]*store.User
}

func (s *fakeUsersStore) findByEmail(email string) *store.User {
	for _, u := range s.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *fakeUsersStore) Create(_ context.Context, user *store.User) error {
	if s.findByEmail(user.Email) != nil {
		return store.ErrDuplicateEmail
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.byID[user.ID] = user
	return nil
}

func (s *fakeUsersStore) GetByID(_ context.Context, userID int64) (*store.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (s *fakeUsersStore) GetByEmail(_ context.Context, email string) (*store.User, error) {
	user := s.findByEmail(email)
	if user == nil {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (s *fakeUsersStore) List(_ context.Context) ([]store.User, error) {
	users := []store.User{}
	for i := int64(1); i <= s.nextID; i++ {
		if u, ok := s.byID[i]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *fakeUsersStore) Update(_ context.Context, userID int64, updates map[string]any) (*store.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if email, ok := updates["email"].(string); ok {
		if other := s.findByEmail(email); other != nil && other.ID != userID {
			return nil, store.ErrDuplicateEmail
		}
		user.Email = email
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if role, ok := updates["role"].(string); ok {
		user.Role = role
	}
	if plaintext, ok := updates["password"].(string); ok {
		if err := user.Password.Set(plaintext); err != nil {
			return nil, err
		}
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

func (s *fakeUsersStore) Delete(_ context.Context, userID int64) (*store.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.byID, userID)
	return user, nil
}

func (s *fakeUsersStore) SetResetToken(_ context.Context, email, tokenHash string, expires time.Time) error {
	user := s.findByEmail(email)
	if user == nil {
		return store.ErrNotFound
	}
	user.ResetPasswordToken = tokenHash
	user.ResetPasswordExpires = expires
	return nil
}

func (s *fakeUsersStore) GetByResetToken(_ context.Context, tokenHash string) (*store.User, error) {
	for _, u := range s.byID {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == tokenHash {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUsersStore) ResetPassword(_ context.Context, user *store.User) error {
	stored, ok := s.byID[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.Password = user.Password
	stored.ResetPasswordToken = ""
	stored.ResetPasswordExpires = time.Time{}
	return nil
}

type fakeTokensStore struct {
	byHash map[string]int64
}

func (s *fakeTokensStore) Create(_ context.Context, userID int64, tokenHash string) error {
	s.byHash[tokenHash] = userID
	return nil
}

func (s *fakeTokensStore) UserID(_ context.Context, tokenHash string) (int64, error) {
	userID, ok := s.byHash[tokenHash]
	if !ok {
		return 0, store.ErrNotFound
	}
	return userID, nil
}

func (s *fakeTokensStore) Delete(_ context.Context, tokenHash string) error {
	if _, ok := s.byHash[tokenHash]; !ok {
		return store.ErrNotFound
	}
	delete(s.byHash, tokenHash)
	return nil
}

type fakeBusinessesStore struct {
	nextID int64
	byID   map[int64]*store.Business
	users  *fakeUsersStore
}

func (s *fakeBusinessesStore) Create(_ context.Context, business *store.Business) error {
	s.nextID++
	business.ID = s.nextID
	business.CreatedAt = time.Now()
	business.UpdatedAt = business.CreatedAt
	s.byID[business.ID] = business
	return nil
}

func (s *fakeBusinessesStore) GetByID(_ context.Context, businessID int64) (*store.Business, error) {
	business, ok := s.byID[businessID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *business
	copied.Owner = s.users.byID[business.UserID]
	return &copied, nil
}

func (s *fakeBusinessesStore) GetByOwner(_ context.Context, userID int64) (*store.Business, error) {
	for i := int64(1); i <= s.nextID; i++ {
		if b, ok := s.byID[i]; ok && b.UserID == userID {
			return b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeBusinessesStore) List(_ context.Context, includeOwner bool) ([]store.Business, error) {
	businesses := []store.Business{}
	for i := int64(1); i <= s.nextID; i++ {
		b, ok := s.byID[i]
		if !ok {
			continue
		}
		copied := *b
		if includeOwner {
			copied.Owner = s.users.byID[b.UserID]
		}
		businesses = append(businesses, copied)
	}
	return businesses, nil
}

func (s *fakeBusinessesStore) Update(_ context.Context, businessID int64, updates map[string]any) (*store.Business, error) {
	business, ok := s.byID[businessID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		business.Name = name
	}
	if userID, ok := updates["user_id"].(int64); ok {
		business.UserID = userID
	}
	if hours, ok := updates["opening_hours"].(string); ok {
		business.OpeningHours = hours
	}
	if status, ok := updates["status"].(string); ok {
		business.Status = status
	}
	business.UpdatedAt = time.Now()
	return business, nil
}

func (s *fakeBusinessesStore) Delete(_ context.Context, businessID int64) (*store.Business, error) {
	business, ok := s.byID[businessID]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.byID, businessID)
	return business, nil
}

type fakeServicesStore struct {
	nextID int64
	byID   map[int64]*store.Service
}

func (s *fakeServicesStore) Create(_ context.Context, service *store.Service) error {
	s.nextID++
	service.ID = s.nextID
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	s.byID[service.ID] = service
	return nil
}

func (s *fakeServicesStore) GetByID(_ context.Context, serviceID, businessID int64) (*store.Service, error) {
	service, ok := s.byID[serviceID]
	if !ok || service.BusinessID != businessID {
		return nil, store.ErrNotFound
	}
	return service, nil
}

func (s *fakeServicesStore) Exists(_ context.Context, serviceID int64) (bool, error) {
	_, ok := s.byID[serviceID]
	return ok, nil
}

func (s *fakeServicesStore) ListByBusiness(_ context.Context, businessID int64) ([]store.Service, error) {
	services := []store.Service{}
	for i := int64(1); i <= s.nextID; i++ {
		if svc, ok := s.byID[i]; ok && svc.BusinessID == businessID {
			services = append(services, *svc)
		}
	}
	return services, nil
}

func (s *fakeServicesStore) Update(_ context.Context, serviceID, businessID int64, updates map[string]any) (*store.Service, error) {
	service, ok := s.byID[serviceID]
	if !ok || service.BusinessID != businessID {
		return nil, store.ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		service.Name = name
	}
	if description, ok := updates["description"].(string); ok {
		service.Description = description
	}
	if price, ok := updates["price"].(float64); ok {
		service.Price = price
	}
	service.UpdatedAt = time.Now()
	return service, nil
}

func (s *fakeServicesStore) Delete(_ context.Context, serviceID, businessID int64) (*store.Service, error) {
	service, ok := s.byID[serviceID]
	if !ok || service.BusinessID != businessID {
		return nil, store.ErrNotFound
	}
	delete(s.byID, serviceID)
	return service, nil
}

type fakeBookingsStore struct {
	nextID   int64
	byID     map[int64]*store.Booking
	services *fakeServicesStore
}

func (s *fakeBookingsStore) Create(_ context.Context, booking *store.Booking) error {
	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	s.byID[booking.ID] = booking
	return nil
}

func (s *fakeBookingsStore) GetByID(_ context.Context, bookingID, userID int64) (*store.Booking, error) {
	booking, ok := s.byID[bookingID]
	if !ok || booking.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *booking
	copied.Service = s.services.byID[booking.ServiceID]
	return &copied, nil
}

func (s *fakeBookingsStore) ListByUser(_ context.Context, userID int64) ([]store.Booking, error) {
	bookings := []store.Booking{}
	for i := int64(1); i <= s.nextID; i++ {
		b, ok := s.byID[i]
		if !ok || b.UserID != userID {
			continue
		}
		copied := *b
		copied.Service = s.services.byID[b.ServiceID]
		bookings = append(bookings, copied)
	}
	return bookings, nil
}

func (s *fakeBookingsStore) Update(_ context.Context, bookingID, userID int64, updates map[string]any) (*store.Booking, error) {
	booking, ok := s.byID[bookingID]
	if !ok || booking.UserID != userID {
		return nil, store.ErrNotFound
	}
	if serviceID, ok := updates["service_id"].(int64); ok {
		booking.ServiceID = serviceID
	}
	if hours, ok := updates["opening_hours"].(string); ok {
		booking.OpeningHours = hours
	}
	booking.UpdatedAt = time.Now()
	return booking, nil
}

func (s *fakeBookingsStore) Delete(_ context.Context, bookingID, userID int64) (*store.Booking, error) {
	booking, ok := s.byID[bookingID]
	if !ok || booking.UserID != userID {
		return nil, store.ErrNotFound
	}
	delete(s.byID, bookingID)
	return booking, nil
}

type fakeReviewsStore struct {
	nextID int64
	byID   map[int64]*store.Review
}

func (s *fakeReviewsStore) Create(_ context.Context, review *store.Review) error {
	s.nextID++
	review.ID = s.nextID
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	s.byID[review.ID] = review
	return nil
}

func (s *fakeReviewsStore) GetByID(_ context.Context, reviewID, userID int64) (*store.Review, error) {
	review, ok := s.byID[reviewID]
	if !ok || review.UserID != userID {
		return nil, store.ErrNotFound
	}
	return review, nil
}

func (s *fakeReviewsStore) ListByUser(_ context.Context, userID int64) ([]store.Review, error) {
	reviews := []store.Review{}
	for i := int64(1); i <= s.nextID; i++ {
		if rv, ok := s.byID[i]; ok && rv.UserID == userID {
			reviews = append(reviews, *rv)
		}
	}
	return reviews, nil
}

func (s *fakeReviewsStore) ListByBusiness(_ context.Context, businessID int64) ([]store.Review, error) {
	reviews := []store.Review{}
	for i := int64(1); i <= s.nextID; i++ {
		if rv, ok := s.byID[i]; ok && rv.BusinessID == businessID {
			reviews = append(reviews, *rv)
		}
	}
	return reviews, nil
}

func (s *fakeReviewsStore) Update(_ context.Context, reviewID, userID int64, updates map[string]any) (*store.Review, error) {
	review, ok := s.byID[reviewID]
	if !ok || review.UserID != userID {
		return nil, store.ErrNotFound
	}
	if businessID, ok := updates["business_id"].(int64); ok {
		review.BusinessID = businessID
	}
	if text, ok := updates["review"].(string); ok {
		review.Review = text
	}
	if stars, ok := updates["stars"].(int); ok {
		review.Stars = stars
	}
	review.UpdatedAt = time.Now()
	return review, nil
}

func (s *fakeReviewsStore) Delete(_ context.Context, reviewID, userID int64) (*store.Review, error) {
	review, ok := s.byID[reviewID]
	if !ok || review.UserID != userID {
		return nil, store.ErrNotFound
	}
	delete(s.byID, reviewID)
	return review, nil
}
