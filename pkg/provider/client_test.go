package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL + "/", MaxRetries: 0}, zap.NewNop())
}

func TestRootPrefersChainAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = io.WriteString(w, `{"providerAddress":"0x00bd138abd70e2f00903268f3db08f2d25677c9e",
			"providerAddresses":{"8996":"0x00000000000000000000000000000000000000aa"},"chainIds":[8996]}`)
	})

	addr, err := c.Root(context.Background(), 8996)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), addr)

	addr, err = c.Root(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x00bd138abd70e2f00903268f3db08f2d25677c9e"), addr)
}

func TestEncrypt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/services/encrypt", r.URL.Path)
		assert.Equal(t, "8996", r.URL.Query().Get("chainId"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"hello":"ocean"}`, string(body))
		_, _ = io.WriteString(w, "0x04deadbeef\n")
	})

	out, err := c.Encrypt(context.Background(), 8996, []byte(`{"hello":"ocean"}`))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0xde, 0xad, 0xbe, 0xef}, out)
}

func TestEncryptError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unsupported chain"}`)
	})

	_, err := c.Encrypt(context.Background(), 1, []byte("x"))
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestInitialize(t *testing.T) {
	consumer := common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services/initialize", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "did:op:abc", q.Get("documentId"))
		assert.Equal(t, "0", q.Get("serviceId"))
		assert.Equal(t, consumer.Hex(), q.Get("consumerAddress"))
		_, _ = io.WriteString(w, `{"datatoken":"0x01","nonce":3,"providerFee":{
			"providerFeeAddress":"0x00000000000000000000000000000000000000bb",
			"providerFeeToken":"0x00000000000000000000000000000000000000cc",
			"providerFeeAmount":"1000000000000000000",
			"providerData":"0x7b7d","v":27,
			"r":"0x01","s":"0x02","validUntil":1700000000}}`)
	})

	res, err := c.Initialize(context.Background(), "did:op:abc", "0", consumer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Nonce.Value().Int64())
	fee := res.ProviderFee
	assert.Equal(t, "1000000000000000000", fee.ProviderFeeAmount.Value().String())
	assert.Equal(t, int64(1700000000), fee.ValidUntil.Value().Int64())
	assert.Equal(t, uint8(27), fee.V)
	assert.Equal(t, "0x7b7d", fee.ProviderData)
}

func TestFlexIntZeroValue(t *testing.T) {
	var f FlexInt
	assert.Equal(t, int64(0), f.Value().Int64())
	require.Error(t, f.UnmarshalJSON([]byte(`"abc"`)))
	require.NoError(t, f.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, int64(0), f.Value().Int64())
}
