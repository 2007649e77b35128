package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIClient talks to the Alita order-management API. All endpoints take
// oauth-style credentials as query parameters.
type APIClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	adminUserID  string
	contactToken string
	httpc        *http.Client
}

func NewAPIClient(baseURL, clientID, clientSecret, adminUserID, contactToken string) *APIClient {
	return &APIClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		adminUserID:  adminUserID,
		contactToken: contactToken,
		httpc:        &http.Client{Timeout: 15 * time.Second},
	}
}

// VoidOrder rejects an order letter through the remote API. A non-2xx
// response becomes a MutationError with whatever reason the body carries.
func (c *APIClient) VoidOrder(ctx context.Context, orderID int64, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return &MutationError{Reason: "Access token diperlukan."}
	}

	q := url.Values{}
	q.Set("user_id", c.adminUserID)
	q.Set("access_token", accessToken)
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	endpoint := fmt.Sprintf("%s/order_letters/%d/order_letters_rejected?%s", c.baseURL, orderID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &InfrastructureError{Op: "void order", Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &InfrastructureError{Op: "void order", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &MutationError{Reason: rejectionReason(body, resp.StatusCode)}
}

// rejectionReason digs the human-readable failure message out of an API
// error body, falling back to the HTTP status.
func rejectionReason(body map[string]interface{}, status int) string {
	for _, key := range []string{"message", "error", "error_description"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	if raw, ok := body["errors"].([]interface{}); ok && len(raw) > 0 {
		parts := make([]string, 0, len(raw))
		for _, e := range raw {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("HTTP %d", status)
}

type contactWorkExperiencesResponse struct {
	Result []struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"result"`
}

// OfficialName fetches the HR-registered name of a user from
// contact_work_experiences. Callers treat any failure as "use the DB name".
func (c *APIClient) OfficialName(ctx context.Context, userID int64) (string, error) {
	q := url.Values{}
	q.Set("access_token", c.contactToken)
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("user_id", strconv.FormatInt(userID, 10))
	endpoint := fmt.Sprintf("%s/contact_work_experiences?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("contact_work_experiences: HTTP %d", resp.StatusCode)
	}
	var parsed contactWorkExperiencesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Result) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Result[0].User.Name), nil
}
