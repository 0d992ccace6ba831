package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
)

// memStore keeps the same invariants as the postgres store: the last copy
// goes to one borrower, one active loan and one pending reservation per user
// and book.
type memStore struct {
	mu           sync.Mutex
	seq          int64
	users        map[int64]model.User
	books        map[int64]model.Book
	loans        map[int64]model.BorrowRecord
	reservations map[int64]model.Reservation

	failList error
}

var (
	_ repository.Repository      = (*memStore)(nil)
	_ repository.StatsRepository = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:        map[int64]model.User{},
		books:        map[int64]model.Book{},
		loans:        map[int64]model.BorrowRecord{},
		reservations: map[int64]model.Reservation{},
	}
}

func (m *memStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) addUser(email string, admin bool) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: m.next(), Email: email, IsAdmin: admin}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addBook(title string, total, available int) model.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := model.Book{ID: m.next(), Title: title, TotalCopies: total, AvailableCopies: available}
	m.books[b.ID] = b
	return b
}

func (m *memStore) addLoan(userID, bookID int64, borrowed, due time.Time) model.BorrowRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.BorrowRecord{
		ID: m.next(), UserID: userID, BookID: bookID,
		BorrowedAt: borrowed, DueDate: due, Status: model.StatusBorrowed,
	}
	m.loans[r.ID] = r
	return r
}

func (m *memStore) addReservation(userID, bookID int64, at time.Time) model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.Reservation{ID: m.next(), UserID: userID, BookID: bookID, ReservedAt: at}
	m.reservations[r.ID] = r
	return r
}

func (m *memStore) book(id int64) model.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id]
}

func (m *memStore) loan(id int64) model.BorrowRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loans[id]
}

func (m *memStore) joinLoan(r model.BorrowRecord) model.BorrowRecord {
	r.BookTitle = m.books[r.BookID].Title
	r.BookAuthor = m.books[r.BookID].Author
	r.UserEmail = m.users[r.UserID].Email
	r.UserName = m.users[r.UserID].Name
	return r
}

func (m *memStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == strings.ToLower(u.Email) {
			return model.User{}, errs.ErrEmailTaken
		}
	}
	u.ID = m.next()
	u.Email = strings.ToLower(u.Email)
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, errs.ErrUserNotFound
}

func (m *memStore) PromoteUser(_ context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	u.IsAdmin = true
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
	m.users[id] = u
	return nil
}

func (m *memStore) ListBooks(_ context.Context, f model.BookFilter) (model.ListBooks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []model.Book
	for _, b := range m.books {
		if f.Query != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Query)) {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	total := len(items)
	if f.Page == 0 || f.Size == 0 {
		return model.ListBooks{Paging: model.Paging{TotalElements: total}, Items: items}, nil
	}
	from := (f.Page - 1) * f.Size
	if from > total {
		from = total
	}
	to := from + f.Size
	if to > total {
		to = total
	}
	return model.ListBooks{
		Paging: model.Paging{Page: f.Page, PageSize: f.Size, TotalElements: total},
		Items:  items[from:to],
	}, nil
}

func (m *memStore) GetBook(_ context.Context, id int64) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	return b, nil
}

func (m *memStore) Categories(context.Context) ([]string, error) { return nil, nil }

func (m *memStore) Authors(context.Context) ([]string, error) { return nil, nil }

func (m *memStore) CreateBook(_ context.Context, req model.BookRequest) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := model.Book{
		ID: m.next(), Title: req.Title, Author: req.Author, Category: req.Category,
		ISBN: req.ISBN, TotalCopies: req.TotalCopies, AvailableCopies: req.TotalCopies,
	}
	m.books[b.ID] = b
	return b, nil
}

func (m *memStore) UpdateBook(_ context.Context, id int64, req model.BookRequest) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	avail := b.AvailableCopies + req.TotalCopies - b.TotalCopies
	avail = max(0, min(avail, req.TotalCopies))
	b.Title, b.TotalCopies, b.AvailableCopies = req.Title, req.TotalCopies, avail
	m.books[id] = b
	return b, nil
}

func (m *memStore) DeleteBook(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return errs.ErrBookNotFound
	}
	var history bool
	for _, r := range m.loans {
		if r.BookID != id {
			continue
		}
		if r.ReturnedAt == nil {
			return errs.ErrBookOnLoan
		}
		history = true
	}
	if history {
		return errs.ErrBookHasHistory
	}
	for rid, r := range m.reservations {
		if r.BookID == id {
			delete(m.reservations, rid)
		}
	}
	delete(m.books, id)
	return nil
}

func (m *memStore) CreateLoan(_ context.Context, userID, bookID int64, due time.Time) (model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[bookID]
	if !ok {
		return model.BorrowRecord{}, errs.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return model.BorrowRecord{}, errs.ErrBookUnavailable
	}
	for _, r := range m.loans {
		if r.UserID == userID && r.BookID == bookID && r.ReturnedAt == nil {
			return model.BorrowRecord{}, errs.ErrDuplicateLoan
		}
	}
	b.AvailableCopies--
	m.books[bookID] = b
	r := model.BorrowRecord{
		ID: m.next(), UserID: userID, BookID: bookID,
		BorrowedAt: time.Now(), DueDate: due, Status: model.StatusBorrowed,
	}
	m.loans[r.ID] = r
	return m.joinLoan(r), nil
}

func (m *memStore) GetBorrow(_ context.Context, id int64) (model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loans[id]
	if !ok {
		return model.BorrowRecord{}, errs.ErrBorrowNotFound
	}
	return m.joinLoan(r), nil
}

func (m *memStore) CloseLoan(_ context.Context, id int64, fine float64, at time.Time) (model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loans[id]
	if !ok {
		return model.BorrowRecord{}, errs.ErrBorrowNotFound
	}
	if r.ReturnedAt != nil {
		return model.BorrowRecord{}, errs.ErrAlreadyReturned
	}
	r.ReturnedAt, r.FineAmount, r.Status = &at, fine, model.StatusReturned
	m.loans[id] = r
	b := m.books[r.BookID]
	b.AvailableCopies = min(b.TotalCopies, b.AvailableCopies+1)
	m.books[r.BookID] = b
	return m.joinLoan(r), nil
}

func (m *memStore) ListLoans(_ context.Context, q repository.LoanQuery) ([]model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]model.BorrowRecord, 0)
	for _, r := range m.loans {
		if q.UserID != 0 && r.UserID != q.UserID {
			continue
		}
		switch q.Filter {
		case model.LoanFilterActive:
			if r.ReturnedAt != nil {
				continue
			}
		case model.LoanFilterOverdue:
			if r.ReturnedAt != nil || !r.DueDate.Before(q.Today) {
				continue
			}
		case model.LoanFilterReturned:
			if r.ReturnedAt == nil {
				continue
			}
		}
		out = append(out, m.joinLoan(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if q.OrderByDue {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit != 0 && uint64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) HasActiveLoan(_ context.Context, userID, bookID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.loans {
		if r.UserID == userID && r.BookID == bookID && r.ReturnedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) LoansDueOn(_ context.Context, date time.Time) ([]model.LoanNotice, error) {
	return m.notices(func(r model.BorrowRecord) bool { return r.DueDate.Equal(date) }), nil
}

func (m *memStore) LoansOverdue(_ context.Context, today time.Time) ([]model.LoanNotice, error) {
	return m.notices(func(r model.BorrowRecord) bool { return r.DueDate.Before(today) }), nil
}

func (m *memStore) notices(match func(model.BorrowRecord) bool) []model.LoanNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LoanNotice
	for _, r := range m.loans {
		if r.ReturnedAt == nil && match(r) {
			out = append(out, model.LoanNotice{
				RecordID: r.ID, UserID: r.UserID, UserEmail: m.users[r.UserID].Email,
				BookTitle: m.books[r.BookID].Title, DueDate: r.DueDate,
			})
		}
	}
	return out
}

func (m *memStore) CreateReservation(_ context.Context, userID, bookID int64) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.UserID == userID && r.BookID == bookID && !r.Fulfilled {
			return model.Reservation{}, errs.ErrDuplicateReservation
		}
	}
	r := model.Reservation{ID: m.next(), UserID: userID, BookID: bookID, ReservedAt: time.Now()}
	m.reservations[r.ID] = r
	return r, nil
}

func (m *memStore) GetReservation(_ context.Context, id int64) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrReservationNotFound
	}
	return r, nil
}

func (m *memStore) DeleteReservation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return errs.ErrReservationNotFound
	}
	delete(m.reservations, id)
	return nil
}

func (m *memStore) HasPendingReservation(_ context.Context, userID, bookID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.UserID == userID && r.BookID == bookID && !r.Fulfilled {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) NextReservation(_ context.Context, bookID int64) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		next  model.Reservation
		found bool
	)
	for _, r := range m.reservations {
		if r.BookID != bookID || r.Fulfilled {
			continue
		}
		if !found || r.ReservedAt.Before(next.ReservedAt) {
			next, found = r, true
		}
	}
	if !found {
		return model.Reservation{}, errs.ErrReservationNotFound
	}
	return next, nil
}

func (m *memStore) ListReservations(_ context.Context, q repository.ReservationQuery) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if (q.UserID == 0 || r.UserID == q.UserID) && r.Fulfilled == q.Fulfilled {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.After(out[j].ReservedAt) })
	return out, nil
}

func (m *memStore) CountPendingReservations(_ context.Context, userID int64) (int, error) {
	res, _ := m.ListReservations(context.Background(), repository.ReservationQuery{UserID: userID}) //nolint:errcheck
	return len(res), nil
}

func (m *memStore) Stats(_ context.Context, today time.Time) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := model.Stats{TotalBooks: len(m.books), TotalUsers: len(m.users)}
	for _, r := range m.loans {
		if r.ReturnedAt == nil {
			st.ActiveBorrows++
			if r.DueDate.Before(today) {
				st.OverdueBooks++
			}
		}
	}
	return st, nil
}

func (m *memStore) PopularBooks(context.Context, int) ([]model.BookCount, error) {
	return []model.BookCount{}, nil
}

func (m *memStore) ActiveReaders(context.Context, int) ([]model.ReaderCount, error) {
	return []model.ReaderCount{}, nil
}

func (m *memStore) BorrowsBetween(_ context.Context, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, r := range m.loans {
		if !r.BorrowedAt.Before(from) && r.BorrowedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type recordingQueue struct {
	mu     sync.Mutex
	events []model.LendingEvent
	err    error
}

func (q *recordingQueue) Enqueue(_, _ string, v any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ev, ok := v.(model.LendingEvent); ok {
		q.events = append(q.events, ev)
	}
	return q.err
}

func (q *recordingQueue) types() []model.EventType {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.EventType, 0, len(q.events))
	for _, ev := range q.events {
		out = append(out, ev.Type)
	}
	return out
}
