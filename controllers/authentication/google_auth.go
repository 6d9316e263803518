package authentication

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"careerpath-backend/config"
	"careerpath-backend/models/users"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo?access_token="

var sessionStore *sessions.CookieStore

func googleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func oauthSessions() *sessions.CookieStore {
	if sessionStore == nil {
		sessionStore = sessions.NewCookieStore(config.SessionSecret())
		sessionStore.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		}
	}
	return sessionStore
}

// HandleGoogleLogin initiates the Google OAuth code flow. The random state
// lives in the session cookie until the callback.
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	session, _ := oauthSessions().Get(r, "oauth-session")
	session.Values["state"] = state
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Error saving session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, googleOauthConfig().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback exchanges the code, fetches the Google user info,
// upserts the account and returns a JWT.
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := oauthSessions().Get(r, "oauth-session")
	expected, _ := session.Values["state"].(string)
	if expected == "" || r.FormValue("state") != expected {
		config.Log.Warnw("invalid OAuth state")
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	token, err := googleOauthConfig().Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		config.Log.Errorw("failed to exchange OAuth code", "error", err)
		http.Error(w, "OAuth exchange failed", http.StatusBadGateway)
		return
	}

	resp, err := http.Get(userInfoURL + token.AccessToken)
	if err != nil {
		config.Log.Errorw("failed to fetch Google user info", "error", err)
		http.Error(w, "Failed to fetch user info", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		http.Error(w, "Failed to read user info", http.StatusBadGateway)
		return
	}

	var userInfo struct {
		Email     string `json:"email"`
		GivenName string `json:"given_name"`
	}
	if err := json.Unmarshal(content, &userInfo); err != nil || userInfo.Email == "" {
		http.Error(w, "Failed to parse user info", http.StatusBadGateway)
		return
	}

	var user users.User
	err = config.DB.Where("email = ? AND provider = ?", userInfo.Email, "google").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = users.User{
			Name:     userInfo.GivenName,
			Email:    userInfo.Email,
			Password: "-", // never used for google accounts
			Provider: "google",
		}
		err = config.DB.Create(&user).Error
	}
	if err != nil {
		config.Log.Errorw("failed to upsert google user", "email", userInfo.Email, "error", err)
		http.Error(w, "Error saving user", http.StatusInternalServerError)
		return
	}

	tokenString, err := GenerateToken(&user)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": tokenString})
}
