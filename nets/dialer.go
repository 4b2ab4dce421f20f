package nets

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
)

// Dialer connects directly to private and loopback addresses, and through
// the configured proxy otherwise.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

type DialTimeout time.Duration

func (Module) DialTimeout(
	loader configs.Loader,
) DialTimeout {
	if value := configs.First[string](loader, "dial_timeout"); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			panic(fmt.Errorf("dial_timeout: %w", err))
		}
		return DialTimeout(d)
	}
	return DialTimeout(30 * time.Second)
}

func (Module) Dialer(
	getProxyDialer GetProxyDialer,
	isLocalAddr IsLocalAddr,
	timeout DialTimeout,
	logger logs.Logger,
) Dialer {
	direct := &net.Dialer{
		Timeout:   time.Duration(timeout),
		KeepAlive: 30 * time.Second,
	}
	return DialerFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		isLocal, err := isLocalAddr(addr)
		if err != nil {
			return nil, err
		}
		if isLocal {
			logger.DebugContext(ctx, "dial", "addr", addr, "route", "direct")
			return direct.DialContext(ctx, network, addr)
		}
		proxyDialer, err := getProxyDialer()
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "dial", "addr", addr, "route", "proxy")
		ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout))
		defer cancel()
		return proxyDialer.DialContext(ctx, network, addr)
	})
}

type DialerFunc func(context.Context, string, string) (net.Conn, error)

var _ Dialer = DialerFunc(nil)

func (d DialerFunc) DialContext(ctx context.Context, network string, addr string) (net.Conn, error) {
	return d(ctx, network, addr)
}

func (d DialerFunc) Dial(network string, addr string) (net.Conn, error) {
	return d(context.Background(), network, addr)
}
