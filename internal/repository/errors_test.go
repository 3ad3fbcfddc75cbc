package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "メールアドレス重複",
			err:  &pq.Error{Code: "23505", Constraint: "idx_users_email_lower"},
			want: ErrDuplicateEmail,
		},
		{
			name: "identity重複",
			err:  &pq.Error{Code: "23505", Constraint: "uq_identities_provider_user"},
			want: ErrDuplicateIdentity,
		},
		{
			name: "応募重複（ラップされたエラー）",
			err:  fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: "uq_applications_announcement_applicant"}),
			want: ErrDuplicateApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateUniqueViolation(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translateUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateUniqueViolation_PassesThroughOtherErrors(t *testing.T) {
	fkErr := &pq.Error{Code: "23503", Constraint: "applications_applicant_id_fkey"}
	if got := translateUniqueViolation(fkErr); got != error(fkErr) {
		t.Errorf("外部キー違反はそのまま返すべき: got %v", got)
	}

	unknown := &pq.Error{Code: "23505", Constraint: "some_other_index"}
	if got := translateUniqueViolation(unknown); got != error(unknown) {
		t.Errorf("未知の制約はそのまま返すべき: got %v", got)
	}

	plain := errors.New("connection refused")
	if got := translateUniqueViolation(plain); got != plain {
		t.Errorf("pq以外のエラーはそのまま返すべき: got %v", got)
	}
}
