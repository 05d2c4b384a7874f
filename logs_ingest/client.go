/* Copyright 2025 Dynatrace LLC. All rights reserved.
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at:
*
*	http://www.apache.org/licenses/LICENSE-2.0
*
* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and limitations
* under the License.
 */

package logs_ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ilemgroup/dynatrace-azure-log-forwarder/logger"
)

const (
	logIngestPath = "/api/v2/logs/ingest"

	// requestMaxBytes caps one serialized request body; bigger batches are
	// split into multiple requests.
	requestMaxBytes = 1048576

	// maxConcurrentRequests bounds the chunk fan-out of one invocation.
	maxConcurrentRequests = 4
)

var (
	bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}
	gzPool  = sync.Pool{New: func() any { return gzip.NewWriter(nil) }}
)

// LogsClient posts outgoing batches to the log ingest endpoint.
type LogsClient struct {
	url        string
	accessKey  string
	httpClient *http.Client
	log        logger.Logger
}

func NewLogsClient(cfg *Config, log logger.Logger) *LogsClient {
	return &LogsClient{
		url:       cfg.IngestURL + logIngestPath,
		accessKey: cfg.AccessKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// Send delivers the batch, split into size-capped chunks dispatched
// concurrently. Records that fail to serialize are counted as parsing
// errors and skipped. The first failed request fails the whole send;
// retrying is the caller's (host runtime's) business.
func (c *LogsClient) Send(ctx context.Context, batch []ParsedRecord, monitoring *SelfMonitoring) error {
	start := time.Now()
	defer func() { monitoring.SendingTime = time.Since(start) }()

	chunks := c.chunk(batch, monitoring)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentRequests)
	for _, chunk := range chunks {
		group.Go(func() error { return c.post(ctx, chunk) })
	}
	return group.Wait()
}

// chunk serializes the batch into request bodies no larger than
// requestMaxBytes, preserving record order within and across chunks.
func (c *LogsClient) chunk(batch []ParsedRecord, monitoring *SelfMonitoring) [][]byte {
	var chunks [][]byte
	var current [][]byte
	currentSize := 2 // brackets

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, assemble(current))
		current = nil
		currentSize = 2
	}

	for _, record := range batch {
		entry, err := record.MarshalBody()
		if err != nil {
			monitoring.ParsingErrors++
			c.log.Error(fmt.Sprintf("Failed to serialize log record. The reason: %v", err))
			continue
		}
		if currentSize+len(entry)+1 > requestMaxBytes {
			flush()
		}
		current = append(current, entry)
		currentSize += len(entry) + 1
	}
	flush()

	for _, chunk := range chunks {
		monitoring.PayloadSize += len(chunk)
	}
	return chunks
}

func assemble(entries [][]byte) []byte {
	return append(append([]byte("["), bytes.Join(entries, []byte(","))...), ']')
}

func (c *LogsClient) post(ctx context.Context, payload []byte) error {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	gz := gzPool.Get().(*gzip.Writer)
	gz.Reset(buf)
	if _, err := gz.Write(payload); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	gzPool.Put(gz)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, buf)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Api-Token "+c.accessKey)
	request.Header.Set("Content-Type", "application/json; charset=utf-8")
	request.Header.Set("Content-Encoding", "gzip")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("log ingest endpoint returned %d: %s", response.StatusCode, detail)
	}
	return nil
}
