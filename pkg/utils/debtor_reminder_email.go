package utils

import (
	"fmt"
	"time"
)

func SendDebtorReminderEmail(to, name, amount, groupName, expenseTitle string, expenseDate time.Time) error {
	subject := fmt.Sprintf("💰 Reminder: you still owe $%s for '%s'", amount, expenseTitle)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Payment Reminder</title>
	</head>
	<body style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333;">
		<div style="max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; border-top: 5px solid #d9534f; overflow: hidden;">
			<div style="background-color: #d9534f; color: #ffffff; text-align: center; padding: 18px 12px;">
				<h1 style="margin: 0; font-size: 18px; font-weight: 600;">Splitmate</h1>
			</div>
			<div style="padding: 20px 18px;">
				<p style="font-size: 14px;">Hi %s,</p>
				<p style="font-size: 14px;">You still owe <strong>$%s</strong> for
				<strong>%s</strong> in <strong>%s</strong> (logged %s).</p>
				<p style="font-size: 13px; color: #666;">Open Splitmate to record a settlement and
				clear this balance.</p>
			</div>
			<div style="background: #f0f4f2; text-align: center; padding: 10px; font-size: 12px; color: #888;">
				Daily reminders stop once every split is settled.
			</div>
		</div>
	</body>
	</html>`, name, amount, expenseTitle, groupName, expenseDate.Format("Jan 2, 2006"))

	return SendEmail(to, subject, body)
}
