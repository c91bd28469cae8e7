package dtf

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// LoginWithCredentials submits the login form and resolves the account.
// A token set by the login response is dropped again when the account check
// fails.
func (c *Client) LoginWithCredentials(ctx context.Context, username, password string) (Account, error) {
	c.logger.Debug("logging in with credentials", "username", username, "password_len", len(password))
	form := url.Values{}
	form.Set("values[login]", username)
	form.Set("values[password]", password)
	form.Set("mode", "raw")
	if _, err := c.postForm(ctx, pathLogin, form); err != nil {
		c.account = nil
		return Account{}, err
	}
	c.logger.Debug("login form accepted")
	account, err := c.AccountCheck(ctx)
	if err != nil {
		c.removeCookie(TokenCookie)
		return Account{}, err
	}
	return account, nil
}

// LoginWithToken installs a saved session token and verifies it. Any
// failure removes the token again before returning.
func (c *Client) LoginWithToken(ctx context.Context, token string) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, &Error{Kind: KindInvalidCredentials, Message: "empty session token"}
	}
	c.logger.Debug("logging in with token", "token_len", len(token))
	c.setCookie(TokenCookie, token)

	account, err := c.AccountCheck(ctx)
	if err != nil {
		c.logger.Warn("token login failed, removing token", "error", err)
		c.removeCookie(TokenCookie)
		return Account{}, err
	}
	return account, nil
}

// AccountCheck resolves the account of the current session. A 403, either
// as HTTP status or envelope code, yields ErrInvalidCredentials.
func (c *Client) AccountCheck(ctx context.Context) (Account, error) {
	env, err := c.get(ctx, pathCheck, url.Values{"mode": {"raw"}})
	if err != nil {
		c.account = nil
		if e, ok := AsError(err); ok && (e.Code == http.StatusForbidden || e.Status == http.StatusForbidden) {
			c.logger.Warn("account check rejected session")
			return Account{}, &Error{Kind: KindInvalidCredentials, Code: e.Code, Status: e.Status, Message: e.Message}
		}
		c.logger.Warn("account check failed", "error", err)
		return Account{}, err
	}

	if !env.Has("data") {
		return Account{}, invalidResponse(CodeMissingData, "")
	}
	var account Account
	if err := env.Decode("data", &account); err != nil {
		return Account{}, &Error{Kind: KindInvalidResponse, Code: CodeMissingData, Message: fallbackMessage, Err: err}
	}
	c.account = &account
	c.logger.Debug("account checked", "id", account.ID, "name", account.Name)
	return account, nil
}
