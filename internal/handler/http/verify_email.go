package http

import (
	"html/template"
	"net/http"
)

// verifyPage is the minimal confirmation page served to the browser that
// followed the emailed verification link.
var verifyPage = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<head><title>BeatX</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
{{if .OK}}
<h1>Email verified</h1>
<p>Your email address has been confirmed. You can close this tab and log in.</p>
{{else}}
<h1>Verification failed</h1>
<p>{{.Message}}</p>
{{end}}
</body>
</html>
`))

type verifyPageData struct {
	OK      bool
	Message string
}

// VerifyEmail handles GET /auth/verify-email. The provider redirects the
// emailed link here with a token_hash query parameter; the page is plain
// HTML because the visitor is a browser, not the app.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tokenHash := query.Get("token_hash")
	if tokenHash == "" {
		tokenHash = query.Get("token")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// The provider redirects failed links here with error details instead
	// of a token.
	if errCode := query.Get("error"); errCode != "" {
		message := query.Get("error_description")
		if message == "" {
			message = "The verification link is invalid or has expired. Please request a new one."
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = verifyPage.Execute(w, verifyPageData{Message: message})
		return
	}

	if tokenHash == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = verifyPage.Execute(w, verifyPageData{Message: "The verification link is missing its token."})
		return
	}

	if err := h.service.VerifyEmail(r.Context(), tokenHash); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = verifyPage.Execute(w, verifyPageData{Message: "The verification link is invalid or has expired. Please request a new one."})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = verifyPage.Execute(w, verifyPageData{OK: true})
}
