// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package keyword

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	kwFoo = Keyword{Name: "FOO", Fingerprint: 1}
	kwBar = Keyword{Name: "BAR", Fingerprint: 2}
)

func collect(each func(func(Keyword))) []Keyword {
	var out []Keyword
	each(func(kw Keyword) { out = append(out, kw) })
	return out
}

func TestLocalSet(t *testing.T) {
	var s LocalSet
	s.Enable(kwFoo)
	s.Enable(kwBar)
	s.Enable(kwFoo)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Keyword{kwFoo, kwBar}, collect(s.Each))
	assert.True(t, s.Contains(kwFoo.Fingerprint))

	assert.True(t, s.Disable(kwFoo.Fingerprint))
	assert.False(t, s.Disable(kwFoo.Fingerprint), "second disable is a no-op")
	assert.Equal(t, []Keyword{kwBar}, collect(s.Each))
}

func TestGlobalSetFastPathFlag(t *testing.T) {
	var s GlobalSet
	assert.False(t, s.Active())
	assert.False(t, s.Disable(kwFoo.Fingerprint))

	s.Enable(kwFoo)
	s.Enable(kwBar)
	s.Enable(kwBar)
	assert.True(t, s.Active())
	assert.Equal(t, []Keyword{kwFoo, kwBar}, s.Snapshot())

	assert.True(t, s.Disable(kwFoo.Fingerprint))
	assert.True(t, s.Active())

	assert.True(t, s.Disable(kwBar.Fingerprint))
	assert.False(t, s.Active(), "removing the last keyword clears the flag")
	assert.Nil(t, s.Snapshot())
	assert.Empty(t, collect(s.Each))
}

func TestGlobalSetConcurrentToggle(t *testing.T) {
	var s GlobalSet
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kw := Keyword{Name: "K", Fingerprint: uint64(i%4 + 1)}
			s.Enable(kw)
			_ = s.Contains(kw.Fingerprint)
			s.Each(func(Keyword) {})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Snapshot(), 4)
	for fp := uint64(1); fp <= 4; fp++ {
		s.Disable(fp)
	}
	assert.False(t, s.Active())
}
