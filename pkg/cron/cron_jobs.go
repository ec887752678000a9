package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"splitmate/pkg/utils"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — send reminders
	_, err := c.AddFunc("0 0 * * *", func() {
		err := SendReminderEmailsToDebtors(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule debtor reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (debtor reminders daily at midnight)")
	return c
}

// -------------------------------------------------------------
// Send daily reminders to debtors with unsettled splits
// -------------------------------------------------------------
func SendReminderEmailsToDebtors(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	// Users without an email address on file are skipped; login is by
	// phone and email is optional profile data.
	rows, err := db.QueryContext(ctx, `
		SELECT
			s.debtor_id,
			u.email,
			COALESCE(u.name, u.phone) AS debtor_name,
			g.name AS group_name,
			e.description AS expense_title,
			e.date,
			SUM(s.amount) AS total_owed
		FROM splits s
		JOIN expenses e ON s.expense_id = e.id
		JOIN groups g ON e.group_id = g.id
		JOIN users u ON s.debtor_id = u.id
		WHERE s.settled = FALSE
		  AND s.debtor_id != s.creditor_id
		  AND u.email IS NOT NULL AND u.email != ''
		GROUP BY s.debtor_id, e.id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for rows.Next() {
		var (
			email, debtorName, groupName, expenseTitle string
			expenseDateRaw                             sql.NullString
			totalOwed                                  float64
		)

		if err := rows.Scan(
			new(int),
			&email,
			&debtorName,
			&groupName,
			&expenseTitle,
			&expenseDateRaw,
			&totalOwed,
		); err != nil {
			utils.Logger.Errorf("Failed to scan debtor row: %v", err)
			continue
		}

		var expenseDate time.Time
		if expenseDateRaw.Valid {
			expenseDate, err = time.Parse("2006-01-02 15:04:05", expenseDateRaw.String)
			if err != nil {
				utils.Logger.Errorf("Failed to parse expense date for %s: %v", email, err)
				continue
			}
		} else {
			expenseDate = time.Now()
		}

		wg.Add(1)
		go func(email, debtorName, groupName, expenseTitle string, totalOwed float64, expenseDate time.Time) {
			defer wg.Done()

			totalOwedStr := fmt.Sprintf("%.2f", totalOwed)

			if err := utils.SendDebtorReminderEmail(
				email,
				debtorName,
				totalOwedStr,
				groupName,
				expenseTitle,
				expenseDate,
			); err != nil {
				errChan <- fmt.Errorf("failed to send reminder email to %s: %v", email, err)
				return
			}

			utils.Logger.Infof("Sent reminder to %s (%s) — $%.2f for '%s' in '%s'",
				debtorName, email, totalOwed, expenseTitle, groupName)
		}(email, debtorName, groupName, expenseTitle, totalOwed, expenseDate)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("Error iterating debtor rows: %v", err)
		return err
	}

	utils.Logger.Info("Finished sending all debtor reminder emails.")
	return nil
}
