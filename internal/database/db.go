package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Bootstrap creates the trips and seats tables when they do not exist.
// Seat status is an ENUM mirroring model.SeatStatus; price is a
// DECIMAL(10,2); the foreign key ties a seat's lifetime to its trip.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			route_name VARCHAR(255) NOT NULL,
			bus_name VARCHAR(255) NOT NULL,
			origin VARCHAR(255) NOT NULL,
			destination VARCHAR(255) NOT NULL,
			departure_time DATETIME NOT NULL,
			arrival_time DATETIME NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS seats (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			trip_id BIGINT UNSIGNED NOT NULL,
			seat_number VARCHAR(16) NOT NULL,
			status ENUM('available','held','sold') NOT NULL DEFAULT 'available',
			price DECIMAL(10,2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_seats_trip_number (trip_id, seat_number),
			CONSTRAINT fk_seats_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// SeedDemo inserts a demo trip with 40 seats (A1..A40 at 650.00) when
// the trips table is empty, so a fresh environment has something to
// browse and book. Existing data is never touched.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	dep := time.Now().UTC().Add(14 * 24 * time.Hour).Truncate(time.Hour)
	res, err := db.ExecContext(ctx,
		`INSERT INTO trips (route_name, bus_name, origin, destination, departure_time, arrival_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"Gurugram to Jaipur", "Aravalli Express", "Gurugram", "Jaipur", dep, dep.Add(5*time.Hour))
	if err != nil {
		return err
	}
	tripID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	query := `INSERT INTO seats (trip_id, seat_number, price) VALUES `
	args := make([]interface{}, 0, 40*3)
	for i := 1; i <= 40; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, tripID, fmt.Sprintf("A%d", i), 650.00)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	log.Printf("database: seeded demo trip %d with 40 seats", tripID)
	return nil
}
