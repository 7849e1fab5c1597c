package credentials

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	defaults := Credentials{AccessKey: "default-ak", SecretKey: "default-sk", Region: "eu-west-1"}

	tests := []struct {
		name     string
		override Override
		defaults Credentials
		want     Credentials
		wantErr  bool
	}{
		{
			name:     "defaults only",
			defaults: defaults,
			want:     defaults,
		},
		{
			name:     "full override",
			override: Override{AccessKey: "ak", SecretKey: "sk"},
			defaults: defaults,
			want:     Credentials{AccessKey: "ak", SecretKey: "sk", Region: "eu-west-1"},
		},
		{
			name:     "override only, no defaults",
			override: Override{AccessKey: "ak", SecretKey: "sk"},
			defaults: Credentials{Region: "us-east-1"},
			want:     Credentials{AccessKey: "ak", SecretKey: "sk", Region: "us-east-1"},
		},
		{
			name:     "per-field override of access key",
			override: Override{AccessKey: "ak"},
			defaults: defaults,
			want:     Credentials{AccessKey: "ak", SecretKey: "default-sk", Region: "eu-west-1"},
		},
		{
			name:     "mixed sources complete each other",
			override: Override{SecretKey: "sk"},
			defaults: Credentials{AccessKey: "default-ak"},
			want:     Credentials{AccessKey: "default-ak", SecretKey: "sk"},
		},
		{
			name:    "nothing anywhere",
			wantErr: true,
		},
		{
			name:     "secret key missing on both sides",
			override: Override{AccessKey: "ak"},
			defaults: Credentials{AccessKey: "default-ak"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.override, tt.defaults)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingCredentials)
				assert.Equal(t, Credentials{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBucket(t *testing.T) {
	b, err := ResolveBucket("requested", "default")
	require.NoError(t, err)
	assert.Equal(t, "requested", b)

	b, err = ResolveBucket("", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", b)

	_, err = ResolveBucket("", "")
	assert.ErrorIs(t, err, ErrMissingBucket)
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/buckets", nil)
	assert.True(t, FromRequest(r).Empty())

	r.Header.Set(AccessKeyHeader, "ak")
	r.Header.Set(SecretKeyHeader, "sk")
	assert.Equal(t, Override{AccessKey: "ak", SecretKey: "sk"}, FromRequest(r))
}
