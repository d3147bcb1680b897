// Copyright © 2025 Fair Grade Forests
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ethclient

import (
	"context"
	"net/url"
	"strings"

	"github.com/fairgradeforests/forestsync/internal/confutil"
	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/config"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/wsclient"
)

func parseHTTPConfig(ctx context.Context, conf *config.HTTPClientConfig) (*resty.Client, error) {
	u, err := url.Parse(conf.URL)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientHTTPURLInvalid, conf.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientHTTPURLInvalid, conf.URL)
	}
	client := ffresty.NewWithConfig(ctx, ffresty.Config{
		URL: u.String(),
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:  conf.HTTPHeaders,
			AuthUsername: conf.Auth.Username,
			AuthPassword: conf.Auth.Password,
		},
	})
	client.SetTimeout(confutil.DurationMin(conf.RequestTimeout, 0, *config.HTTPClientDefaults.RequestTimeout))
	return client, nil
}

func parseWSConfig(ctx context.Context, conf *config.WSClientConfig) (*wsclient.WSConfig, error) {
	u, err := url.Parse(conf.URL)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientWebSocketURLInvalid, conf.URL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientWebSocketURLInvalid, conf.URL)
	}
	defs := config.WSClientDefaults
	return &wsclient.WSConfig{
		WebSocketURL:           u.String(),
		HTTPHeaders:            conf.HTTPHeaders,
		ReadBufferSize:         int(confutil.ByteSize(conf.ReadBufferSize, 0, *defs.ReadBufferSize)),
		WriteBufferSize:        int(confutil.ByteSize(conf.WriteBufferSize, 0, *defs.WriteBufferSize)),
		ConnectionTimeout:      confutil.DurationMin(conf.ConnectionTimeout, 0, *defs.ConnectionTimeout),
		InitialDelay:           confutil.DurationMin(conf.ConnectRetryDelay, 0, *defs.ConnectRetryDelay),
		MaximumDelay:           confutil.DurationMin(conf.ConnectRetryMaxDelay, 0, *defs.ConnectRetryMaxDelay),
		HeartbeatInterval:      confutil.DurationMin(conf.HeartbeatInterval, 0, *defs.HeartbeatInterval),
		AuthUsername:           conf.Auth.Username,
		AuthPassword:           conf.Auth.Password,
		InitialConnectAttempts: confutil.IntMin(conf.InitialConnectAttempts, 0, *defs.InitialConnectAttempts),
	}, nil
}

// wsURLFromHTTP lets a single HTTP URL configure both connections, as most
// nodes serve WebSockets on the same endpoint
func wsURLFromHTTP(httpURL string) string {
	noHTTPPrefix, trimmed := strings.CutPrefix(httpURL, "http")
	if trimmed {
		return "ws" + noHTTPPrefix
	}
	return ""
}
