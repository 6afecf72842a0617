// Package wxr imports block documents from WordPress export (WXR) files.
package wxr

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"ghostkit/document"
)

// exported post types which never carry blocks
var skipTypes = map[string]bool{
	"attachment":    true,
	"nav_menu_item": true,
}

// Format reads WXR files, every item with block content becomes separate
// document.
func Format(log *zap.Logger) document.Format {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("wxr")
	return document.Format{
		Exts: []string{".xml", ".wxr"},
		Read: func(r io.Reader, name string) ([]*document.Document, error) {
			return Read(r, name, log)
		},
	}
}

// Read parses export file. Block client ids are derived from document
// source and block position, so repeated imports of the same export give the
// same identifiers.
func Read(r io.Reader, name string, log *zap.Logger) ([]*document.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read WXR: %w", err)
	}

	channel := doc.FindElement("/rss/channel")
	if channel == nil {
		return nil, fmt.Errorf("%s is not WordPress export, no channel found", name)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	var docs []*document.Document
	for i, item := range channel.SelectElements("item") {
		postType := text(item, "wp:post_type")
		if skipTypes[postType] {
			continue
		}

		list, err := parseBlocks(text(item, "content:encoded"))
		if err != nil {
			log.Warn("Skipping item with malformed blocks", zap.String("source", name), zap.Int("item", i), zap.Error(err))
			continue
		}
		if len(list) == 0 {
			log.Debug("Skipping item without blocks", zap.String("source", name), zap.Int("item", i), zap.String("type", postType))
			continue
		}

		slug := text(item, "wp:post_name")
		if slug == "" {
			slug = text(item, "wp:post_id")
		}
		if slug == "" {
			slug = strconv.Itoa(i)
		}

		d := &document.Document{
			Title:  text(item, "title"),
			Blocks: list,
			Source: filepath.Join(base, slug+filepath.Ext(name)),
		}
		assignClientIDs(d)
		docs = append(docs, d)
	}
	log.Debug("Export parsed", zap.String("source", name), zap.Int("documents", len(docs)))
	return docs, nil
}

func text(e *etree.Element, path string) string {
	if child := e.SelectElement(path); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func assignClientIDs(d *document.Document) {
	n := 0
	_ = d.Walk(func(b *document.Block, _ int) error {
		b.ClientID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(d.Source+"#"+strconv.Itoa(n))).String()
		n++
		return nil
	})
}
