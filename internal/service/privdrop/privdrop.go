package privdrop

import (
	"fmt"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// DropTo switches the process to the named account: supplementary groups
// are cleared, then the group and finally the user id are changed. Call it
// after every privileged file has been opened; the open descriptors keep
// working. Only meaningful when running as root.
func DropTo(username string) error {
	account, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	uid, err := strconv.Atoi(account.Uid)
	if err != nil {
		return fmt.Errorf("parse uid %q: %w", account.Uid, err)
	}

	gid, err := strconv.Atoi(account.Gid)
	if err != nil {
		return fmt.Errorf("parse gid %q: %w", account.Gid, err)
	}

	// Order matters: the group must change while we still own root,
	// and the uid change comes last.
	if err = unix.Setgroups([]int{gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}

	if err = unix.Setgid(gid); err != nil {
		return fmt.Errorf("setgid %d: %w", gid, err)
	}

	if err = unix.Setuid(uid); err != nil {
		return fmt.Errorf("setuid %d: %w", uid, err)
	}

	return nil
}
