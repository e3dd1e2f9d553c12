// Package license talks to the license server: it builds the hardware-id
// digest, POSTs the check-in request, and decodes the Blowfish-encrypted
// response into the fields the runtime gates feature availability on.
package license

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blowfish"

	"github.com/viewtouch/posk/internal/poserr"
)

// Protocol is the wire protocol version this client speaks; the server
// may reply with a schema the client does not recognize, which is always
// a Protocol error rather than a best-effort guess (spec §6, §REDESIGN).
const Protocol = 2

// Status is the decoded response of a license check-in.
type Status struct {
	LicenseType string
	Paid        bool
	DaysLeft    int
	Terminals   int
	Printers    int
}

// Client checks in against a license server.
type Client struct {
	endpoint string
	key      []byte
	http     *http.Client
}

// New builds a Client. key is the shared Blowfish key the server
// encrypts its response body with; it is provisioned out of band, never
// derived from the hwid.
func New(endpoint string, key []byte) *Client {
	return &Client{endpoint: endpoint, key: key, http: &http.Client{Timeout: 15 * time.Second}}
}

// HardwareID returns the SHA-1 hex digest of seed (typically the
// machine's primary network interface MAC, gathered by the caller).
func HardwareID(seed string) string {
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// CheckIn POSTs a check-in request and returns the decoded Status.
func (c *Client) CheckIn(ctx context.Context, hwid string, vtbuild int) (Status, error) {
	form := url.Values{}
	form.Set("hwid", hwid)
	form.Set("vtbuild", strconv.Itoa(vtbuild))
	form.Set("protocol", strconv.Itoa(Protocol))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Status{}, fmt.Errorf("build license request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("%w: license check-in: %v", poserr.ErrIO, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, fmt.Errorf("%w: read license response: %v", poserr.ErrIO, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("%w: license server returned %s", poserr.ErrIO, resp.Status)
	}

	plain, err := c.decrypt(body)
	if err != nil {
		return Status{}, err
	}
	return parseStatus(plain)
}

// decrypt undoes ECB-mode Blowfish over body, which the server pads to a
// block-size multiple; trailing NUL padding is stripped after decoding.
func (c *Client) decrypt(body []byte) (string, error) {
	cipher, err := blowfish.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: build blowfish cipher: %v", poserr.ErrIO, err)
	}
	if len(body)%blowfish.BlockSize != 0 {
		return "", fmt.Errorf("%w: license response is not block-aligned", poserr.ErrProtocol)
	}

	out := make([]byte, len(body))
	for off := 0; off < len(body); off += blowfish.BlockSize {
		cipher.Decrypt(out[off:off+blowfish.BlockSize], body[off:off+blowfish.BlockSize])
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

// parseStatus reads the comma-separated
// license_type,license_paid,license_days,terminals,printers tuple. Any
// malformed or out-of-range field is a Protocol error: the client never
// guesses a default for a field it cannot parse (spec §REDESIGN FLAGS).
func parseStatus(plain string) (Status, error) {
	fields := strings.Split(plain, ",")
	if len(fields) != 5 {
		return Status{}, fmt.Errorf("%w: expected 5 license fields, got %d", poserr.ErrProtocol, len(fields))
	}

	paid, err := strconv.ParseBool(fields[1])
	if err != nil {
		return Status{}, fmt.Errorf("%w: license_paid field: %v", poserr.ErrProtocol, err)
	}
	days, err := strconv.Atoi(fields[2])
	if err != nil {
		return Status{}, fmt.Errorf("%w: license_days field: %v", poserr.ErrProtocol, err)
	}
	terminals, err := strconv.Atoi(fields[3])
	if err != nil {
		return Status{}, fmt.Errorf("%w: terminals field: %v", poserr.ErrProtocol, err)
	}
	printers, err := strconv.Atoi(fields[4])
	if err != nil {
		return Status{}, fmt.Errorf("%w: printers field: %v", poserr.ErrProtocol, err)
	}

	return Status{
		LicenseType: fields[0],
		Paid:        paid,
		DaysLeft:    days,
		Terminals:   terminals,
		Printers:    printers,
	}, nil
}

// encryptForTest mirrors the server's encoding so tests can build a
// realistic response body without a live license server.
func encryptForTest(key []byte, plain string) ([]byte, error) {
	cipher, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := plain
	if rem := len(padded) % blowfish.BlockSize; rem != 0 {
		padded += strings.Repeat("\x00", blowfish.BlockSize-rem)
	}
	in := []byte(padded)
	out := make([]byte, len(in))
	for off := 0; off < len(in); off += blowfish.BlockSize {
		cipher.Encrypt(out[off:off+blowfish.BlockSize], in[off:off+blowfish.BlockSize])
	}
	return out, nil
}
