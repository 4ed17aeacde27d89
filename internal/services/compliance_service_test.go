package services

import (
	"testing"
)

func TestScrubCloudPayload(t *testing.T) {
	payload := map[string]interface{}{
		"encryption":     map[string]interface{}{"algorithm": "AES256"},
		"kms_key_id":     "arn:aws:kms:us-east-1:123456789012:key/abc",
		"Public_Access":  false,
		"region":         "us-east-1",
		"owner_email":    "team@example.com",
		"internal_notes": "do not keep",
		"instance_name":  "prod-db-1",
	}

	scrubbed := ScrubCloudPayload(payload)

	for _, key := range []string{"encryption", "kms_key_id", "Public_Access", "region"} {
		if _, ok := scrubbed[key]; !ok {
			t.Errorf("security key %q was dropped", key)
		}
	}
	for _, key := range []string{"owner_email", "internal_notes", "instance_name"} {
		if _, ok := scrubbed[key]; ok {
			t.Errorf("non-security key %q survived scrubbing", key)
		}
	}
}

func TestScrubCloudPayloadEmpty(t *testing.T) {
	if got := ScrubCloudPayload(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil payload, got %v", got)
	}
	if got := ScrubCloudPayload(map[string]interface{}{"hostname": "x"}); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
