package ghttp

import (
	"bytes"
	"encoding/json"
	"github.com/pkg/errors"
	"io"
	"io/ioutil"
	"net/http"
)

type RequestOption func(req *http.Request)

type HTTPClient struct {
	MaxRead int64
	client  *http.Client
}

var DefaultClient = NewHTTPClient(nil)

func NewHTTPClient(client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPClient{
		MaxRead: 10 * 1024 * 1024,
		client:  client,
	}
}

func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		if key == "" || value == "" {
			return
		}

		req.Header.Set(key, value)
	}
}

func (c *HTTPClient) DoGetJSON(url string, resObj interface{}, opts ...RequestOption) error {
	return c.DoJSON("GET", url, nil, resObj, opts...)
}

func (c *HTTPClient) DoPostJSON(url string, reqObj interface{}, resObj interface{}, opts ...RequestOption) error {
	return c.DoJSON("POST", url, reqObj, resObj, opts...)
}

func (c *HTTPClient) DoDeleteJSON(url string, reqObj interface{}, resObj interface{}, opts ...RequestOption) error {
	return c.DoJSON("DELETE", url, reqObj, resObj, opts...)
}

// DoJSON sends reqObj, if any, as a JSON body and decodes the response
// into resObj, if any.
func (c *HTTPClient) DoJSON(method, url string, reqObj interface{}, resObj interface{}, opts ...RequestOption) error {
	var body io.Reader
	if reqObj != nil {
		reqB, err := json.Marshal(reqObj)
		if err != nil {
			return NewError(-1, nil, errors.WithStack(err))
		}
		body = bytes.NewReader(reqB)
		opts = append([]RequestOption{
			WithHeader("Content-Type", "application/json"),
		}, opts...)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return NewError(-1, nil, errors.WithStack(err))
	}
	res, err := c.doReq(req, opts...)
	if err != nil {
		return err
	}
	if resObj == nil || res == nil {
		return nil
	}
	if err := json.Unmarshal(res, resObj); err != nil {
		return NewError(-1, res, errors.WithStack(err))
	}
	return nil
}

func (c *HTTPClient) doReq(req *http.Request, opts ...RequestOption) ([]byte, error) {
	for _, opt := range opts {
		opt(req)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, NewError(-1, nil, errors.WithStack(err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	resBody, err := ioutil.ReadAll(io.LimitReader(res.Body, c.MaxRead))
	if err != nil {
		return nil, NewError(-1, nil, errors.WithStack(err))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, NewError(res.StatusCode, resBody, errors.Errorf("non-200 status code %d", res.StatusCode))
	}

	return resBody, nil
}
