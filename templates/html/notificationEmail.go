// Package templates renders the HTML the service sends outside the JSON API
package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderNotificationEmail generates the HTML mail for a case notification.
// The subject is displayed in the header banner, and bodyContent is plain text
// that gets HTML-escaped and has newlines converted to <br> tags. caseURL may
// be empty, in which case no link is shown.
func RenderNotificationEmail(subject, bodyContent, caseURL string) string {
	escaped := html.EscapeString(bodyContent)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")
	safeSubject := html.EscapeString(subject)

	link := ""
	if caseURL != "" {
		link = fmt.Sprintf(`<p><a class="button" href="%s">Open the case</a></p>`, html.EscapeString(caseURL))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f3f4f6; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1e3a8a; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #111827; line-height: 1.6; font-size: 15px; }
    .button { display: inline-block; padding: 10px 18px; background-color: #1e3a8a; color: #fff; text-decoration: none; border-radius: 4px; }
    .footer { padding: 24px 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
      %s
    </div>
    <div class="footer">
      <p>You receive this mail because a case you take part in changed.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody, link)
}
