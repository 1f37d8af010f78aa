package marstek

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrTimeout is returned when no matching reply arrives before the
// per-call deadline.
var ErrTimeout = errors.New("marstek: timeout waiting for device reply")

// TransportError wraps a socket bind/send/receive failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("marstek: %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeviceClient is the command surface of a Marstek energy storage
// device.
type DeviceClient interface {
	GetEnergyStatus() (*EnergyStatus, error)
	GetMode() (*OperatingMode, error)
	GetBatteryStatus() (*BatteryStatus, error)
	SetMode(mode string, config map[string]any) (bool, error)
}

type ClientConfig struct {
	Host string
	Port int
	// Instance is the device sub-instance index sent as params.id.
	Instance int
	// LocalHost defaults to the wildcard address.
	LocalHost string
	// LocalPort defaults to Port. The firmware expects src==dst.
	LocalPort int
	Timeout   time.Duration
}

type Client struct {
	cfg      ClientConfig
	destAddr *net.UDPAddr
	gate     *PortGate

	idMu  sync.Mutex
	reqId int64

	logger *zap.Logger
}

// CreateClient builds a UDP client for a single device. A nil gate
// creates an owned one; pass a shared gate when several clients bind
// the same local port.
func CreateClient(cfg ClientConfig, gate *PortGate, logger *zap.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	destAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return nil, err
	}
	if gate == nil {
		gate = NewPortGate()
	}
	return &Client{
		cfg:      cfg,
		destAddr: destAddr,
		gate:     gate,
		logger:   logger,
	}, nil
}

// nextId assigns a fresh request id: monotonically increasing, wraps
// within the signed 31-bit range, never 0. Ids are never reused even if
// a prior transaction failed.
func (c *Client) nextId() int64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.reqId = (c.reqId + 1) & 0x7FFFFFFF
	if c.reqId == 0 {
		c.reqId = 1
	}
	return c.reqId
}

func (c *Client) bindAddr() *net.UDPAddr {
	port := c.cfg.LocalPort
	if port == 0 {
		port = c.cfg.Port
	}
	addr := &net.UDPAddr{Port: port}
	if c.cfg.LocalHost != "" {
		addr.IP = net.ParseIP(c.cfg.LocalHost)
	}
	return addr
}

// call sends one request datagram and waits for exactly the matching
// reply: sender IP must equal the device address (the source port is
// deliberately not checked, some firmwares reply from another port) and
// the reply id must equal the request id. Everything else is discarded
// without resetting the deadline.
func (c *Client) call(req request) (*response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	laddr := c.bindAddr()
	release := c.gate.Acquire(laddr.Port)
	defer release()

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		c.logger.Error("udp bind failed", zap.String("local", laddr.String()), zap.Error(err))
		return nil, &TransportError{Op: "bind " + laddr.String(), Err: err}
	}
	defer conn.Close()

	c.logger.Debug("udp request",
		zap.String("dest", c.destAddr.String()),
		zap.String("local", laddr.String()),
		zap.ByteString("payload", data))

	if _, err := conn.WriteToUDP(data, c.destAddr); err != nil {
		return nil, &TransportError{Op: "send " + c.destAddr.String(), Err: err}
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	buf := make([]byte, 4096)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, &TransportError{Op: "deadline", Err: err}
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.logger.Error("udp timeout waiting for reply", zap.String("dest", c.destAddr.String()))
				return nil, ErrTimeout
			}
			return nil, &TransportError{Op: "recv", Err: err}
		}

		c.logger.Debug("udp reply", zap.String("from", addr.String()), zap.ByteString("payload", buf[:n]))

		if !addr.IP.Equal(c.destAddr.IP) {
			c.logger.Debug("ignoring packet from unexpected sender",
				zap.String("from", addr.String()), zap.String("expected", c.destAddr.IP.String()))
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(buf[:n], &obj); err != nil {
			c.logger.Debug("ignoring non-object udp payload", zap.Error(err))
			continue
		}

		var replyId int64
		rawId, ok := obj["id"]
		if !ok || json.Unmarshal(rawId, &replyId) != nil || replyId != req.Id {
			c.logger.Debug("ignoring mismatched reply id",
				zap.ByteString("got", rawId), zap.Int64("expected", req.Id))
			continue
		}

		return &response{Id: replyId, Result: obj["result"]}, nil
	}
}

// GetEnergyStatus queries the device's basic electrical energy
// information (ES.GetStatus). Returns nil without error if the reply
// carried no result payload.
func (c *Client) GetEnergyStatus() (*EnergyStatus, error) {
	resp, err := c.call(request{
		Id:     c.nextId(),
		Method: "ES.GetStatus",
		Params: map[string]any{"id": c.cfg.Instance},
	})
	if err != nil {
		return nil, err
	}
	if !resp.hasResult() {
		return nil, nil
	}
	var status EnergyStatus
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMode queries the device's operating mode (ES.GetMode).
func (c *Client) GetMode() (*OperatingMode, error) {
	resp, err := c.call(request{
		Id:     c.nextId(),
		Method: "ES.GetMode",
		Params: map[string]any{"id": c.cfg.Instance},
	})
	if err != nil {
		return nil, err
	}
	if !resp.hasResult() {
		return nil, nil
	}
	var mode OperatingMode
	if err := json.Unmarshal(resp.Result, &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

// GetBatteryStatus queries the battery pack state (Bat.GetStatus).
func (c *Client) GetBatteryStatus() (*BatteryStatus, error) {
	resp, err := c.call(request{
		Id:     c.nextId(),
		Method: "Bat.GetStatus",
		Params: map[string]any{"id": c.cfg.Instance},
	})
	if err != nil {
		return nil, err
	}
	if !resp.hasResult() {
		return nil, nil
	}
	var status BatteryStatus
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetMode configures the device's operating mode (ES.SetMode). The
// acceptance flag is result.set_result; a result object without the
// flag counts as accepted, some firmwares omit it on success.
func (c *Client) SetMode(mode string, config map[string]any) (bool, error) {
	cfg := map[string]any{"mode": mode}
	for k, v := range config {
		if v != nil {
			cfg[k] = v
		}
	}
	resp, err := c.call(request{
		Id:     c.nextId(),
		Method: "ES.SetMode",
		Params: map[string]any{"id": c.cfg.Instance, "config": cfg},
	})
	if err != nil {
		return false, err
	}
	if !resp.hasResult() {
		return false, nil
	}
	var result struct {
		SetResult *bool `json:"set_result"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return false, err
	}
	if result.SetResult == nil {
		return true, nil
	}
	return *result.SetResult, nil
}

// ensure interface compliance
var _ DeviceClient = (*Client)(nil)
