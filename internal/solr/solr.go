// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package solr is a thin HTTP client for a Solr-compatible search
// index: add, commit, and optimize against the update handler. It is
// an external collaborator reached through a narrow interface; schema
// management and query-side access are out of scope.
package solr

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kraklabs/conveyor/internal/document"
)

// Index is the narrow interface BatchPublisher depends on, so a fake
// can stand in for tests without a running Solr instance.
type Index interface {
	Add(ctx context.Context, docs []*document.Document) error
	Commit(ctx context.Context) error
	Optimize(ctx context.Context) error
}

// Client talks to a Solr-compatible core's update handler over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given core's base URL (e.g.
// "http://localhost:8983/solr/mycore") with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type addDoc struct {
	XMLName xml.Name   `xml:"doc"`
	Fields  []addField `xml:"field"`
}

type addField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type addEnvelope struct {
	XMLName xml.Name `xml:"add"`
	Docs    []addDoc `xml:"doc"`
}

// Add posts docs to the update handler. It does not commit; the caller
// decides commit cadence.
func (c *Client) Add(ctx context.Context, docs []*document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	env := addEnvelope{Docs: make([]addDoc, 0, len(docs))}
	for _, doc := range docs {
		env.Docs = append(env.Docs, toAddDoc(doc))
	}
	return c.postUpdate(ctx, env)
}

func toAddDoc(doc *document.Document) addDoc {
	fields := []addField{{Name: "id", Value: doc.ID}, {Name: "type", Value: doc.Type}}
	for k, v := range doc.Features {
		fields = append(fields, addField{Name: k, Value: v})
	}
	for _, row := range doc.Rows {
		for k, v := range row {
			fields = append(fields, addField{Name: k, Value: v})
		}
	}
	return addDoc{Fields: fields}
}

// Commit issues a hard commit against the update handler.
func (c *Client) Commit(ctx context.Context) error {
	return c.postUpdate(ctx, struct {
		XMLName xml.Name `xml:"commit"`
	}{})
}

// Optimize issues an optimize (segment merge) operation.
func (c *Client) Optimize(ctx context.Context) error {
	return c.postUpdate(ctx, struct {
		XMLName xml.Name `xml:"optimize"`
	}{})
}

func (c *Client) postUpdate(ctx context.Context, body any) error {
	payload, err := xml.Marshal(body)
	if err != nil {
		return fmt.Errorf("solr: marshal request: %w", err)
	}

	url := c.baseURL + "/update"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("solr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solr: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("solr: %s returned %d: %s", url, resp.StatusCode, string(b))
	}
	return nil
}

var _ Index = (*Client)(nil)
