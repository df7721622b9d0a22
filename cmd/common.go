// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"

	"blockwatch.cc/easkit/rpc"
	"github.com/echa/config"
	"github.com/fatih/color"
)

var (
	errNoRPC = errors.New("missing rpc url, use --rpc or set rpc.url")

	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	keyColor  = color.New(color.FgCyan)
)

func disableColor() {
	color.NoColor = true
}

func newHTTPClient() (*http.Client, error) {
	// Set proxy function if there is a proxy configured.
	var proxyFunc func(*http.Request) (*url.URL, error)
	if purl := config.GetString("rpc.proxy"); purl != "" {
		proxyURL, err := url.Parse(purl)
		if err != nil {
			return nil, err
		}
		proxyFunc = http.ProxyURL(proxyURL)
	}

	client := http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   config.GetDuration("rpc.dial_timeout"),
				KeepAlive: config.GetDuration("rpc.keepalive"),
			}).DialContext,
			Proxy:                 proxyFunc,
			IdleConnTimeout:       config.GetDuration("rpc.idle_timeout"),
			ResponseHeaderTimeout: config.GetDuration("rpc.response_timeout"),
			ExpectContinueTimeout: config.GetDuration("rpc.continue_timeout"),
			MaxIdleConns:          config.GetInt("rpc.idle_conns"),
			MaxIdleConnsPerHost:   config.GetInt("rpc.idle_conns"),
		},
	}
	return &client, nil
}

// newRPCClient returns nil without error when no node is configured.
func newRPCClient() (*rpc.Client, error) {
	baseurl := config.GetString("rpc.url")
	if baseurl == "" {
		return nil, nil
	}
	c, err := newHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("rpc client: %v", err)
	}
	rpcclient, err := rpc.NewClient(baseurl, c)
	if err != nil {
		return nil, fmt.Errorf("rpc client: %v", err)
	}
	rpcclient.UserAgent = UserAgent
	return rpcclient, nil
}

func print(val interface{}) error {
	buf, err := json.MarshalIndent(val, "", "  ")
	if err != nil {
		return fmt.Errorf("output error: %v", err)
	}
	fmt.Printf("%s\n", string(buf))
	return nil
}

// printKV writes an aligned key/value line.
func printKV(key string, val interface{}) {
	fmt.Printf("%s %v\n", keyColor.Sprintf("%-12s", key+":"), val)
}

func ok(format string, args ...interface{}) {
	okColor.Fprint(os.Stderr, "OK ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func fail(err error) {
	failColor.Fprint(os.Stderr, "ERROR ")
	fmt.Fprintln(os.Stderr, err)
}
