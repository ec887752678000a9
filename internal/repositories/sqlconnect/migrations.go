package sqlconnect

import "database/sql"

// Table creation order matters: splits reference expenses, expenses and
// settlements reference groups and users. Secondary indexes live inside
// the CREATE TABLE statements so the whole schema stays idempotent under
// IF NOT EXISTS. `groups` is backtick-quoted: GROUPS is a reserved word
// in MySQL 8.0. Deleting an expense cascades to its splits; group
// teardown is done explicitly in one transaction by the delete-group
// handler.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		phone VARCHAR(20) NOT NULL UNIQUE,
		name VARCHAR(100),
		email VARCHAR(255),
		image TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	"CREATE TABLE IF NOT EXISTS `groups` (" + `
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(500),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		id INT AUTO_INCREMENT PRIMARY KEY,
		group_id INT NOT NULL,
		user_id INT NOT NULL,
		role ENUM('ADMIN','MEMBER') NOT NULL DEFAULT 'MEMBER',
		joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_group_user (group_id, user_id),
		FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id INT AUTO_INCREMENT PRIMARY KEY,
		group_id INT NOT NULL,
		paid_by INT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		description VARCHAR(255) NOT NULL,
		category ENUM('FOOD','TRANSPORT','SHOPPING','ENTERTAINMENT','UTILITIES','RENT','OTHER') NOT NULL DEFAULT 'OTHER',
		date DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_expenses_group_id (group_id),
		FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id),
		FOREIGN KEY (paid_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS splits (
		id INT AUTO_INCREMENT PRIMARY KEY,
		expense_id INT NOT NULL,
		debtor_id INT NOT NULL,
		creditor_id INT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		settled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_splits_expense_id (expense_id),
		KEY idx_splits_debtor_id (debtor_id),
		FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
		FOREIGN KEY (debtor_id) REFERENCES users(id),
		FOREIGN KEY (creditor_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		id INT AUTO_INCREMENT PRIMARY KEY,
		group_id INT NOT NULL,
		from_user INT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		description VARCHAR(255),
		date DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_settlements_group_id (group_id),
		FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id),
		FOREIGN KEY (from_user) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS settlement_splits (
		settlement_id INT NOT NULL,
		split_id INT NOT NULL,
		PRIMARY KEY (settlement_id, split_id),
		FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE,
		FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE
	)`,
}

// RunMigrations creates the schema if it does not exist yet.
func RunMigrations(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
