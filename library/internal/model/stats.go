package model

type Stats struct {
	TotalBooks    int `json:"total_books" db:"total_books"`
	TotalUsers    int `json:"total_users" db:"total_users"`
	ActiveBorrows int `json:"active_borrows" db:"active_borrows"`
	OverdueBooks  int `json:"overdue_books" db:"overdue_books"`
}

type BookCount struct {
	BookID      int64  `json:"bookId" db:"book_id"`
	Title       string `json:"title" db:"title"`
	Author      string `json:"author" db:"author"`
	BorrowCount int    `json:"borrowCount" db:"borrow_count"`
}

type ReaderCount struct {
	UserID      int64  `json:"userId" db:"user_id"`
	Email       string `json:"email" db:"email"`
	Name        string `json:"name" db:"name"`
	BorrowCount int    `json:"borrowCount" db:"borrow_count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type AdminDashboard struct {
	Stats               `json:",inline"`
	PendingReservations int            `json:"pending_reservations"`
	PopularBooks        []BookCount    `json:"popular_books"`
	ActiveReaders       []ReaderCount  `json:"active_readers"`
	OverdueRecords      []BorrowRecord `json:"overdue_records"`
	MonthsStats         []MonthCount   `json:"months_stats"`
}

type UserDashboard struct {
	ActiveBorrows  []BorrowRecord `json:"active_borrows"`
	OverdueBorrows []BorrowRecord `json:"overdue_borrows"`
	MyReservations int            `json:"my_reservations"`
	RecentBorrows  []BorrowRecord `json:"recent_borrows"`
}
