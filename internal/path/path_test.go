package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAbsolute(t *testing.T) {
	got, status := Normalize("/usr/local/bin")
	assert.Equal(t, OK, status)
	assert.Equal(t, "//usr/local/bin", got)
}

func TestNormalizeCurrentRelative(t *testing.T) {
	got, status := Normalize("foo/bar.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./foo/bar.c", got)
}

func TestNormalizeDotSlashPreserved(t *testing.T) {
	got, status := Normalize("./foo/bar.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./foo/bar.c", got)
}

func TestNormalizeParentRelative(t *testing.T) {
	got, status := Normalize("../foo/bar.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "../foo/bar.c", got)
}

func TestNormalizeWindowsDrive(t *testing.T) {
	got, status := Normalize(`C:\Users\me\file.c`)
	assert.Equal(t, OK, status)
	assert.Equal(t, "//C:/Users/me/file.c", got)
}

func TestNormalizeUNCRejected(t *testing.T) {
	_, status := Normalize(`\\server\share`)
	assert.Equal(t, NotSupported, status)
}

func TestNormalizeHomeRejected(t *testing.T) {
	_, status := Normalize("~/foo")
	assert.Equal(t, NotSupported, status)
}

func TestNormalizeEmptySegmentInvalid(t *testing.T) {
	_, status := Normalize("//foo//bar")
	assert.Equal(t, InvalidFormat, status)
}

func TestNormalizeForbiddenChar(t *testing.T) {
	_, status := Normalize("//foo/ba?r")
	assert.Equal(t, InvalidFormat, status)
}

func TestNormalizeDotDotSegmentInteriorInvalid(t *testing.T) {
	_, status := Normalize("//foo/../bar")
	assert.Equal(t, InvalidFormat, status)
}

func TestNormalizeEmptyInput(t *testing.T) {
	_, status := Normalize("   ")
	assert.Equal(t, InvalidFormat, status)
}

func TestDenormalizeUnix(t *testing.T) {
	assert.Equal(t, "/usr/local", Denormalize("//usr/local"))
}

func TestDenormalizeWindows(t *testing.T) {
	assert.Equal(t, "C:/Users/me", Denormalize("//C:/Users/me"))
}

func TestJoinRelative(t *testing.T) {
	got, status := Join("./a/b", "c/d.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./a/b/c/d.c", got)
}

func TestJoinWithParentPop(t *testing.T) {
	got, status := Join("./a/b", "../c.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./a/c.c", got)
}

func TestJoinAbsoluteBase(t *testing.T) {
	got, status := Join("//a/b", "c.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "//a/b/c.c", got)
}

func TestJoinRejectsAbsoluteRHS(t *testing.T) {
	_, status := Join("./a", "//b")
	assert.Equal(t, InvalidFormat, status)
}

func TestJoinOverPopIsNotSupported(t *testing.T) {
	_, status := Join("//a", "../../b")
	assert.Equal(t, NotSupported, status)
}

func TestJoinDotBase(t *testing.T) {
	got, status := Join(".", "a/b.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./a/b.c", got)
}

func TestMakeRelativeSameDir(t *testing.T) {
	got, status := MakeRelative("//a/b", "//a/b")
	assert.Equal(t, OK, status)
	assert.Equal(t, ".", got)
}

func TestMakeRelativeDescend(t *testing.T) {
	got, status := MakeRelative("//a/b", "//a/b/c/d.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "./c/d.c", got)
}

func TestMakeRelativeAscend(t *testing.T) {
	got, status := MakeRelative("//a/b/c", "//a/x.c")
	assert.Equal(t, OK, status)
	assert.Equal(t, "../../x.c", got)
}

func TestMakeRelativeMixedKindNotSupported(t *testing.T) {
	_, status := MakeRelative("//a/b", "./a/b")
	assert.Equal(t, NotSupported, status)
}

func TestMakeRelativeDifferentDriveNotSupported(t *testing.T) {
	_, status := MakeRelative("//C:/a", "//D:/a")
	assert.Equal(t, NotSupported, status)
}

func TestPathPartFilename(t *testing.T) {
	assert.Equal(t, "file.tar.gz", PathPart("//a/b/file.tar.gz", Filename))
}

func TestPathPartFilepath(t *testing.T) {
	assert.Equal(t, "//a/b", PathPart("//a/b/file.tar.gz", Filepath))
}

func TestPathPartBasename(t *testing.T) {
	assert.Equal(t, "file", PathPart("//a/b/file.tar.gz", Basename))
}

func TestPathPartCompleteBasename(t *testing.T) {
	assert.Equal(t, "file.tar", PathPart("//a/b/file.tar.gz", CompleteBasename))
}

func TestPathPartExtension(t *testing.T) {
	assert.Equal(t, "gz", PathPart("//a/b/file.tar.gz", Extension))
}

func TestPathPartNoExtension(t *testing.T) {
	assert.Equal(t, "", PathPart("//a/b/file", Extension))
	assert.Equal(t, "file", PathPart("//a/b/file", Basename))
}

func TestApplyExpansionBasic(t *testing.T) {
	exp := Expansion{Source: "//a/b/file.c", RootBuildDir: "//build", CurrentBuildDir: "//build/a/b"}
	got, status := ApplyExpansion("{{current_build_dir}}/{{source_name_part}}.o", exp, false)
	assert.Equal(t, OK, status)
	assert.Equal(t, "//build/a/b/file.o", got)
}

func TestApplyExpansionFilePartsOnlyRejectsSource(t *testing.T) {
	exp := Expansion{Source: "//a/b/file.c"}
	_, status := ApplyExpansion("{{source}}", exp, true)
	assert.Equal(t, InvalidFormat, status)
}

func TestApplyExpansionUnmatchedBraces(t *testing.T) {
	_, status := ApplyExpansion("{{source", Expansion{}, false)
	assert.Equal(t, InvalidFormat, status)
}

func TestApplyExpansionUnknownToken(t *testing.T) {
	_, status := ApplyExpansion("{{nope}}", Expansion{}, false)
	assert.Equal(t, InvalidFormat, status)
}
