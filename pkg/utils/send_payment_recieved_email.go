package utils

import (
	"fmt"
	"time"
)

func SendPaymentReceivedEmail(to, payerName, amount, groupName string, settlementID int, date time.Time) error {
	subject := fmt.Sprintf("💸 %s settled up with you in %s", payerName, groupName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Payment Received</title>
	</head>
	<body style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333;">
		<div style="max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; border-top: 5px solid #0a4d3c; overflow: hidden;">
			<div style="background-color: #0a4d3c; color: #ffffff; text-align: center; padding: 18px 12px;">
				<h1 style="margin: 0; font-size: 18px; font-weight: 600;">Splitmate</h1>
			</div>
			<div style="padding: 20px 18px;">
				<p style="font-size: 14px;">Good news! <strong>%s</strong> recorded a settlement of
				<strong>$%s</strong> towards what they owe you in <strong>%s</strong>.</p>
				<p style="font-size: 13px; color: #666;">Settlement #%d &middot; %s</p>
				<p style="font-size: 13px; color: #666;">The covered splits are now marked as settled
				and no longer count towards outstanding balances.</p>
			</div>
			<div style="background: #f0f4f2; text-align: center; padding: 10px; font-size: 12px; color: #888;">
				You are receiving this because you are a member of %s on Splitmate.
			</div>
		</div>
	</body>
	</html>`, payerName, amount, groupName, settlementID, date.Format("Jan 2, 2006 15:04"), groupName)

	return SendEmail(to, subject, body)
}
