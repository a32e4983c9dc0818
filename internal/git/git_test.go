package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/app/base.link b/app/base.link
index 3b18e51..a9c4f1e 100644
--- a/app/base.link
+++ b/app/base.link
@@ -2,0 +3,2 @@ form user
+  task save
+    hide
@@ -10 +12 @@ task main
-  walk args
+  walk argv
diff --git a/lib/old.link b/lib/old.link
deleted file mode 100644
index 5716ca5..0000000
--- a/lib/old.link
+++ /dev/null
@@ -1,2 +0,0 @@
-host x 1
-host y 2
diff --git a/lib/util.link b/lib/util.link
index 1111111..2222222 100644
--- a/lib/util.link
+++ b/lib/util.link
@@ -4,1 +3,0 @@ host z 3
-host w 4
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 3)

	t.Run("Added and modified lines", func(t *testing.T) {
		assert.Equal(t, "app/base.link", changes[0].Path)
		assert.Equal(t, []int{3, 4, 12}, changes[0].ChangedLines)
		assert.False(t, changes[0].Deleted)
	})

	t.Run("Deleted file", func(t *testing.T) {
		assert.Equal(t, "lib/old.link", changes[1].Path)
		assert.True(t, changes[1].Deleted)
		assert.Empty(t, changes[1].ChangedLines)
	})

	t.Run("Pure deletion marks the preceding line", func(t *testing.T) {
		assert.Equal(t, []int{3}, changes[2].ChangedLines)
	})
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestParseDiff_MalformedChunk(t *testing.T) {
	_, err := parseDiff([]byte("diff --git a/x.link b/x.link\n@@ broken @@\n"))
	assert.Error(t, err)
}
