package database

import (
	"context"
	"database/sql"
)

// Migrate creates the ticketing tables when they do not exist yet. The
// statements are idempotent so the server can run them on every start.
// Seat label uniqueness within an (event, type code) scope is enforced
// here as the last line of defense behind the booking service's
// per-event serialization.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			date VARCHAR(32) NOT NULL,
			time VARCHAR(32) NOT NULL,
			location VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			image VARCHAR(512) NOT NULL DEFAULT '',
			image_id VARCHAR(128) NOT NULL DEFAULT '',
			category VARCHAR(64) NOT NULL,
			available_seats BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT chk_events_seats CHECK (available_seats >= 0)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS ticket_types (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			event_id BIGINT UNSIGNED NOT NULL,
			type_code VARCHAR(32) NOT NULL,
			name VARCHAR(128) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			benefits TEXT,
			available_quantity BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_ticket_types_event_type (event_id, type_code),
			CONSTRAINT fk_ticket_types_event FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE,
			CONSTRAINT chk_ticket_types_quantity CHECK (available_quantity >= 0)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			event_id BIGINT UNSIGNED NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			payment_status ENUM('pending','completed','failed') NOT NULL DEFAULT 'pending',
			order_id VARCHAR(64) NULL,
			payment_id VARCHAR(64) NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_tickets_user (user_id),
			KEY idx_tickets_order (order_id),
			CONSTRAINT fk_tickets_event FOREIGN KEY (event_id) REFERENCES events (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS ticket_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			ticket_id BIGINT UNSIGNED NOT NULL,
			type_code VARCHAR(32) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			CONSTRAINT fk_ticket_items_ticket FOREIGN KEY (ticket_id) REFERENCES tickets (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS ticket_seats (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			item_id BIGINT UNSIGNED NOT NULL,
			event_id BIGINT UNSIGNED NOT NULL,
			type_code VARCHAR(32) NOT NULL,
			seat_label VARCHAR(48) NOT NULL,
			UNIQUE KEY uq_ticket_seats_label (event_id, type_code, seat_label),
			CONSTRAINT fk_ticket_seats_item FOREIGN KEY (item_id) REFERENCES ticket_items (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			ticket_id BIGINT UNSIGNED NOT NULL,
			order_id VARCHAR(64) NOT NULL,
			payment_id VARCHAR(64) NULL,
			amount DECIMAL(10,2) NOT NULL,
			status ENUM('pending','completed','failed') NOT NULL DEFAULT 'pending',
			verified_at DATETIME NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_payments_order (order_id),
			KEY idx_payments_ticket (ticket_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
