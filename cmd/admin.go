// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cardinalhq/gallerykeeper/config"
)

var errNotAuthorized = errors.New("not authorized")

// AuthorizeFunc decides whether actor may run an admin command.
type AuthorizeFunc func(actor string) error

// adminAllowlist authorizes the emails listed under admin.emails.
func adminAllowlist(cfg config.AdminConfig) AuthorizeFunc {
	return func(actor string) error {
		if strings.TrimSpace(actor) == "" {
			return fmt.Errorf("%w: no actor given (use --as or GALLERYKEEPER_ACTOR)", errNotAuthorized)
		}
		if !cfg.IsAdmin(actor) {
			return fmt.Errorf("%w: %s is not an admin", errNotAuthorized, actor)
		}
		return nil
	}
}

func actorOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("GALLERYKEEPER_ACTOR")
}
