package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/config"
)

// bodyRecorder tees the response body into buf until it grows past max.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	max      int
	overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.max > 0 && w.buf.Len()+len(b) > w.max {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey hashes the route pattern and the raw query.  The query is
// always part of the key: /v1/users/lookup?email=a and ?email=b must
// never share an entry.
func cacheKey(prefix, route, query string) string {
	sum := sha1.Sum([]byte(route + "?" + query))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// encodePayload lays out a cached response as
// [status uint32][header length uint32][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	n := int(binary.BigEndian.Uint32(bs[4:8]))
	if n > len(bs)-8 {
		return 0, nil, nil, false
	}
	if err := json.Unmarshal(bs[8:8+n], &header); err != nil {
		return 0, nil, nil, false
	}
	return int(binary.BigEndian.Uint32(bs[0:4])), header, bs[8+n:], true
}

// NewRedisCache serves GET responses from Redis and stores 200 responses
// for cfg.TTL.  It is mounted only on routes whose answer does not depend
// on hold state.  Redis failures fall through to the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c.Path(), req.URL.RawQuery)

			cached, err := rdb.Get(req.Context(), key).Bytes()
			switch {
			case err == nil:
				if status, hdr, body, ok := decodePayload(cached); ok {
					return replay(c, status, hdr, body)
				}
			case err != redis.Nil:
				log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
			}

			rw := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
			c.Response().Writer = rw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rw.status != http.StatusOK || rw.overflow {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			hdr.Del(echo.HeaderContentLength)
			payload, err := encodePayload(rw.status, hdr, rw.buf.Bytes())
			if err != nil {
				return nil
			}
			// the request context may already be done once the body is out
			if err := rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err(); err != nil {
				log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

func replay(c echo.Context, status int, hdr http.Header, body []byte) error {
	out := c.Response().Header()
	for k, vals := range hdr {
		for _, v := range vals {
			out.Add(k, v)
		}
	}
	out.Set("X-Cache", "HIT")
	c.Response().WriteHeader(status)
	_, err := c.Response().Write(body)
	return err
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
