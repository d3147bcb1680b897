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
	"encoding/json"
	"sync"

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

type wsConnection interface {
	rpcbackend.RPC
	Connect(ctx context.Context) error
	Close()
	subscribeLogs(ctx context.Context, filter *logFilter) (logStream, error)
}

// logStream is a single eth_subscribe("logs") subscription
type logStream interface {
	// next blocks for the next log, returning false when the stream or ctx is closed
	next(ctx context.Context) (json.RawMessage, bool)
	unsubscribe(ctx context.Context) error
}

type logFilter struct {
	Address ethtypes.Address0xHex         `json:"address"`
	Topics  [][]ethtypes.HexBytes0xPrefix `json:"topics"`
}

type logJSONRPC struct {
	Address         *ethtypes.Address0xHex      `json:"address"`
	Topics          []ethtypes.HexBytes0xPrefix `json:"topics"`
	Data            ethtypes.HexBytes0xPrefix   `json:"data"`
	BlockNumber     ethtypes.HexUint64          `json:"blockNumber"`
	TransactionHash ethtypes.HexBytes0xPrefix   `json:"transactionHash"`
	LogIndex        ethtypes.HexUint64          `json:"logIndex"`
	Removed         bool                        `json:"removed"`
}

type wsRPCAdapter struct {
	rpcbackend.WebSocketRPCClient
}

func (a *wsRPCAdapter) subscribeLogs(ctx context.Context, filter *logFilter) (logStream, error) {
	sub, rpcErr := a.Subscribe(ctx, "logs", filter)
	if rpcErr != nil {
		return nil, rpcErr.Error()
	}
	return &wsLogStream{sub: sub}, nil
}

type wsLogStream struct {
	sub rpcbackend.Subscription
}

func (s *wsLogStream) next(ctx context.Context) (json.RawMessage, bool) {
	select {
	case n, ok := <-s.sub.Notifications():
		if !ok {
			return nil, false
		}
		if n.Result == nil {
			return json.RawMessage(`null`), true
		}
		return n.Result.Bytes(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *wsLogStream) unsubscribe(ctx context.Context) error {
	if rpcErr := s.sub.Unsubscribe(ctx); rpcErr != nil {
		return rpcErr.Error()
	}
	return nil
}

type eventSubscription struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	event     *abi.Entry
	stream    logStream
	handler   EventHandler
	done      chan struct{}
	once      sync.Once
	unsubErr  error
}

func (ec *ethClient) Subscribe(ctx context.Context, contract *types.ContractBinding, eventName string, handler EventHandler) (Subscription, error) {
	if ec.ws == nil {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientSubscribeNoWS)
	}
	event := contract.ABI.Events()[eventName]
	if event == nil {
		return nil, i18n.NewError(ctx, msgs.MsgEthClientEventNotFound, eventName)
	}
	stream, err := ec.ws.subscribeLogs(ctx, &logFilter{
		Address: contract.Address,
		Topics:  [][]ethtypes.HexBytes0xPrefix{{event.SignatureHashBytes()}},
	})
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientSubscribeFailed, eventName)
	}

	es := &eventSubscription{
		event:   event,
		stream:  stream,
		handler: handler,
		done:    make(chan struct{}),
	}
	es.ctx, es.cancelCtx = context.WithCancel(log.WithLogField(context.WithoutCancel(ctx), "event", eventName))
	go es.notificationLoop()
	return es, nil
}

func (es *eventSubscription) notificationLoop() {
	defer close(es.done)
	for {
		raw, ok := es.stream.next(es.ctx)
		if !ok {
			log.L(es.ctx).Debugf("Event subscription closed")
			return
		}
		ev, err := es.decodeLog(raw)
		if ev == nil && err == nil {
			continue
		}
		es.handler(ev, err)
	}
}

func (es *eventSubscription) decodeLog(raw json.RawMessage) (*Event, error) {
	var l *logJSONRPC
	err := json.Unmarshal(raw, &l)
	if err != nil || l == nil {
		return nil, i18n.WrapError(es.ctx, err, msgs.MsgEthClientEventDecodeFailed, es.event.Name)
	}
	if l.Removed {
		log.L(es.ctx).Infof("Ignoring removed log %d/%s/%d", l.BlockNumber.Uint64(), l.TransactionHash, l.LogIndex.Uint64())
		return nil, nil
	}
	cv, err := es.event.DecodeEventDataCtx(es.ctx, l.Topics, l.Data)
	var data Values
	if err == nil {
		data, err = serializeValues(es.ctx, cv)
	}
	if err != nil {
		return nil, i18n.WrapError(es.ctx, err, msgs.MsgEthClientEventDecodeFailed, es.event.Name)
	}
	ev := &Event{
		Name:            es.event.Name,
		BlockNumber:     l.BlockNumber.Uint64(),
		TransactionHash: l.TransactionHash,
		LogIndex:        l.LogIndex.Uint64(),
		Data:            data,
	}
	if l.Address != nil {
		ev.Address = *l.Address
	}
	return ev, nil
}

// Unsubscribe stops delivery before returning. It must not be called from the handler.
func (es *eventSubscription) Unsubscribe(ctx context.Context) error {
	es.once.Do(func() {
		es.cancelCtx()
		<-es.done
		es.unsubErr = es.stream.unsubscribe(ctx)
	})
	return es.unsubErr
}
