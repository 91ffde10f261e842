// Copyright 2018-2019 The logrange Authors
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

package maya

import (
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

// CodecEncodeSelf encodes dt as ISO 8601 string
func (dt *DT) CodecEncodeSelf(enc *codec.Encoder) {
	enc.MustEncode(dt.ISO8601())
}

// CodecDecodeSelf decodes dt from ISO 8601 string. JSON null gives the
// zero DT.
func (dt *DT) CodecDecodeSelf(dec *codec.Decoder) {
	var v interface{}
	dec.MustDecode(&v)
	if v == nil {
		*dt = DT{}
		return
	}
	s, err := codecString(v)
	if err != nil {
		panic(err)
	}
	res, err := ParseISO8601(s)
	if err != nil {
		panic(err)
	}
	*dt = res
}

// MarshalText is a part of encoding.TextMarshaler
func (dt DT) MarshalText() ([]byte, error) {
	return []byte(dt.ISO8601()), nil
}

// UnmarshalText is a part of encoding.TextUnmarshaler
func (dt *DT) UnmarshalText(text []byte) error {
	res, err := ParseISO8601(string(text))
	if err != nil {
		return err
	}
	*dt = res
	return nil
}

// CodecEncodeSelf encodes iv as ISO 8601 "start/end" string
func (iv *Interval) CodecEncodeSelf(enc *codec.Encoder) {
	enc.MustEncode(iv.ISO8601())
}

// CodecDecodeSelf decodes iv from any ISO 8601 interval form
func (iv *Interval) CodecDecodeSelf(dec *codec.Decoder) {
	var v interface{}
	dec.MustDecode(&v)
	s, err := codecString(v)
	if err != nil {
		panic(err)
	}
	res, err := ParseInterval(s)
	if err != nil {
		panic(err)
	}
	*iv = res
}

// MarshalText is a part of encoding.TextMarshaler
func (iv Interval) MarshalText() ([]byte, error) {
	return []byte(iv.ISO8601()), nil
}

// UnmarshalText is a part of encoding.TextUnmarshaler
func (iv *Interval) UnmarshalText(text []byte) error {
	res, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*iv = res
	return nil
}

// codecString accepts both string and raw bytes, binary formats like
// msgpack decode strings to the latter.
func codecString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", errors.Wrapf(ErrTypeMismatch, "expecting ISO 8601 string, but got %T", v)
}
