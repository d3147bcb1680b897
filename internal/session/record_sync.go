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

package session

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/fairgradeforests/forestsync/internal/msgs"
	"github.com/fairgradeforests/forestsync/internal/photoref"
	"github.com/fairgradeforests/forestsync/pkg/ethclient"
	"github.com/fairgradeforests/forestsync/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	methodRecordsCount = "getRecordsCount"
	methodRecord       = "records"
)

// Field positions in the tuple returned by records(index)
const (
	fieldTimestamp = iota
	fieldTribeName
	fieldFamilyName
	fieldCoffeeTreeCount
	fieldPhotoReference
	fieldLatitude
	fieldLongitude
)

// syncRecords runs one full synchronization pass. Every pass takes a new
// generation when it starts, and only publishes if no later-started pass has
// published first. On failure the published record set is untouched.
func (e *engine) syncRecords(ctx context.Context) error {
	generation := e.syncGeneration.Add(1)
	ctx = log.WithLogField(ctx, "generation", strconv.FormatUint(generation, 10))

	contract := e.state.getContract()
	if contract == nil {
		return i18n.NewError(ctx, msgs.MsgSessionNotReady)
	}

	e.metrics.SyncStarted()
	records, err := e.fetchRecords(ctx, contract)
	if err != nil {
		log.L(ctx).Warnf("Record synchronization failed, keeping previous record set: %s", err)
		e.metrics.SyncFailed()
		return err
	}

	if !e.state.publishRecordSet(&types.RecordSet{Generation: generation, Records: records}) {
		log.L(ctx).Debugf("Discarding %d records from stale synchronization pass", len(records))
		e.metrics.SyncStale()
		return nil
	}
	log.L(ctx).Infof("Published %d records", len(records))
	e.metrics.SyncPublished(generation, len(records))
	e.notifyRecordsUpdated()
	return nil
}

func (e *engine) fetchRecords(ctx context.Context, contract *types.ContractBinding) ([]types.Record, error) {
	count, err := e.readRecordCount(ctx, contract)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, count)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrentReads)
	for i := range records {
		index := uint64(i)
		g.Go(func() error {
			r, err := e.readRecord(gCtx, contract, index)
			if err != nil {
				return err
			}
			records[index] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable, so equal timestamps stay in ledger order
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

func (e *engine) readRecordCount(ctx context.Context, contract *types.ContractBinding) (int, error) {
	readCtx, cancel := e.withReadTimeout(ctx)
	defer cancel()
	values, err := e.ledger.Call(readCtx, contract, methodRecordsCount)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, msgs.MsgSessionRecordCountFailed)
	}
	count, err := values.Uint64(ctx, 0)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, msgs.MsgSessionRecordCountInvalid, err.Error())
	}
	if count > math.MaxInt32 {
		return 0, i18n.NewError(ctx, msgs.MsgSessionRecordCountInvalid, strconv.FormatUint(count, 10))
	}
	return int(count), nil
}

func (e *engine) readRecord(ctx context.Context, contract *types.ContractBinding, index uint64) (*types.Record, error) {
	readCtx, cancel := e.withReadTimeout(ctx)
	defer cancel()
	values, err := e.ledger.Call(readCtx, contract, methodRecord, strconv.FormatUint(index, 10))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSessionRecordReadFailed, index)
	}
	return normalizeRecord(ctx, index, values)
}

func normalizeRecord(ctx context.Context, index uint64, values ethclient.Values) (r *types.Record, err error) {
	r = &types.Record{Index: index}
	invalid := func(field string, err error) error {
		return i18n.WrapError(ctx, err, msgs.MsgSessionRecordInvalid, index, field)
	}
	if r.Timestamp, err = values.Uint64(ctx, fieldTimestamp); err != nil {
		return nil, invalid("timestamp", err)
	}
	if r.TribeName, err = values.String(ctx, fieldTribeName); err != nil {
		return nil, invalid("tribeName", err)
	}
	if r.FamilyName, err = values.String(ctx, fieldFamilyName); err != nil {
		return nil, invalid("familyName", err)
	}
	if r.CoffeeTreeCount, err = values.Uint64(ctx, fieldCoffeeTreeCount); err != nil {
		return nil, invalid("coffeeTreeCount", err)
	}
	if r.PhotoReference, err = values.String(ctx, fieldPhotoReference); err != nil {
		return nil, invalid("photoReference", err)
	}
	if r.Latitude, err = coordinateField(ctx, values, index, fieldLatitude, "latitude"); err != nil {
		return nil, err
	}
	if r.Longitude, err = coordinateField(ctx, values, index, fieldLongitude, "longitude"); err != nil {
		return nil, err
	}

	if r.PhotoReference != "" {
		photoCID, err := photoref.Canonical(r.PhotoReference)
		if err != nil {
			log.L(ctx).Warnf("Record %d has a photo reference that is not a CID '%s': %s", index, r.PhotoReference, err)
		} else {
			r.PhotoCID = photoCID
		}
	}
	return r, nil
}

func coordinateField(ctx context.Context, values ethclient.Values, index uint64, i int, field string) (types.Coordinate, error) {
	scaled, err := values.BigInt(ctx, i)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, msgs.MsgSessionRecordInvalid, index, field)
	}
	c, ok := types.CoordinateFromScaled(scaled)
	if !ok {
		return 0, i18n.NewError(ctx, msgs.MsgSessionRecordFieldRange, index, field, scaled.String())
	}
	return c, nil
}
