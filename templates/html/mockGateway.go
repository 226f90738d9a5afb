package templates

import (
	"fmt"
	"html"
)

// RenderMockGateway generates the demo payment page of the mock gateway. The
// two links report success or failure back to the callback.
func RenderMockGateway(paymentID, successURL, failureURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Mock payment gateway</title>
</head>
<body style="font-family: sans-serif; max-width: 480px; margin: 60px auto;">
  <h1>Mock payment gateway</h1>
  <p>Payment <code>%s</code></p>
  <p><a href="%s">Pay</a> &middot; <a href="%s">Fail</a></p>
</body>
</html>`, html.EscapeString(paymentID), html.EscapeString(successURL), html.EscapeString(failureURL))
}
