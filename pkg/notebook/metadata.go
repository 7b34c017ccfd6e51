package notebook

import (
	"tableflip.dev/nbook/pkg/cell"
)

// DeepCopy copies JSON-shaped values; see cell.DeepCopy.
func DeepCopy(v any) any {
	return cell.DeepCopy(v)
}
