package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"yieldvault/crypto"
	"yieldvault/native/vault"
	"yieldvault/rpc/modules"
	"yieldvault/storage"
)

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	registry := vault.NewRegistry()
	registry.Register(vault.NullFarm{})
	registry.Register(vault.FailingFarm{})

	engine := vault.NewEngine()
	engine.SetState(vault.NewPositionStore(storage.NewMemDB(), registry))

	server := NewServer(modules.NewVaultModule(engine, registry), token)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func testAddress(suffix byte) string {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.NewAddress(crypto.VaultPrefix, raw).String()
}

func call(t *testing.T, ts *httptest.Server, token, method string, params interface{}) RPCResponse {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"id":      1,
		"method":  method,
		"params":  []interface{}{params},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	defer resp.Body.Close()

	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func resultInto(t *testing.T, resp RPCResponse, target interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestServerTriggerScenario(t *testing.T) {
	ts := newTestServer(t, "")
	owner := testAddress(0x01)

	resp := call(t, ts, "", "vault_openPosition", map[string]string{"owner": owner})
	if resp.Error != nil {
		t.Fatalf("open position: %+v", resp.Error)
	}
	var opened vaultOpenPositionResult
	resultInto(t, resp, &opened)

	resp = call(t, ts, "", "vault_selectAdapter", map[string]interface{}{
		"caller":     owner,
		"positionId": opened.PositionID,
		"adapter":    "failing-farm",
		"refTag":     0,
	})
	if resp.Error != nil {
		t.Fatalf("select adapter: %+v", resp.Error)
	}

	resp = call(t, ts, "", "vault_trigger", map[string]string{
		"liquidator": owner,
		"positionId": opened.PositionID,
		"amount":     "500",
	})
	if resp.Error == nil {
		t.Fatalf("expected trigger to fail")
	}
	// The adapter's own message must cross the RPC boundary untouched.
	if resp.Error.Message != "DoS: External Call Failed" {
		t.Fatalf("unexpected error message: %q", resp.Error.Message)
	}

	resp = call(t, ts, "", "vault_getPosition", map[string]string{"positionId": opened.PositionID})
	if resp.Error != nil {
		t.Fatalf("get position: %+v", resp.Error)
	}
	var position modules.PositionResult
	resultInto(t, resp, &position)
	if !position.Bound || position.Adapter != "failing-farm" {
		t.Fatalf("unexpected position state: %+v", position)
	}
}

func TestServerRequiresBearerToken(t *testing.T) {
	ts := newTestServer(t, "secret")
	owner := testAddress(0x02)

	resp := call(t, ts, "", "vault_openPosition", map[string]string{"owner": owner})
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", resp.Error)
	}

	resp = call(t, ts, "secret", "vault_openPosition", map[string]string{"owner": owner})
	if resp.Error != nil {
		t.Fatalf("authorized open failed: %+v", resp.Error)
	}
}

func TestServerRejectsUnknownMethod(t *testing.T) {
	ts := newTestServer(t, "")

	resp := call(t, ts, "", "vault_unknown", map[string]string{})
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestServerRejectsNonPost(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestServerParamValidation(t *testing.T) {
	ts := newTestServer(t, "")

	payload := fmt.Sprintf(`{"jsonrpc":%q,"id":2,"method":"vault_trigger","params":[]}`, jsonRPCVersion)
	resp, err := ts.Client().Post(ts.URL, "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", decoded.Error)
	}
}
