package kms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeowayLabs/kms/raw"
)

func TestGroupWrites(t *testing.T) {
	objIDs, countProps, propIDs, propValues, err := groupWrites([]propertyWrite{
		{object: 41, property: 4, value: 101},
		{object: 31, property: 1, value: 1},
		{object: 41, property: 3, value: 31},
		{object: 31, property: 2, value: 900},
		{object: 11, property: 3, value: 31},
	})
	require.NoError(t, err)

	assert.Equal(t, []uint32{11, 31, 41}, objIDs)
	assert.Equal(t, []uint32{1, 2, 2}, countProps)
	assert.Equal(t, []uint32{3, 1, 2, 3, 4}, propIDs)
	assert.Equal(t, []uint64{31, 1, 900, 31, 101}, propValues)

	// parallel array invariant: the counts partition the property
	// arrays exactly
	var total uint32
	for _, n := range countProps {
		total += n
	}
	assert.Equal(t, int(total), len(propIDs))
	assert.Equal(t, len(propIDs), len(propValues))
}

func TestGroupWritesDedup(t *testing.T) {
	objIDs, countProps, propIDs, propValues, err := groupWrites([]propertyWrite{
		{object: 41, property: 4, value: 101},
		{object: 41, property: 4, value: 101},
		{object: 41, property: 4, value: 101},
	})
	require.NoError(t, err)

	// exact duplicate triples collapse to one write
	assert.Equal(t, []uint32{41}, objIDs)
	assert.Equal(t, []uint32{1}, countProps)
	assert.Equal(t, []uint32{4}, propIDs)
	assert.Equal(t, []uint64{101}, propValues)
}

func TestGroupWritesConflictSurvives(t *testing.T) {
	_, countProps, propIDs, propValues, err := groupWrites([]propertyWrite{
		{object: 41, property: 4, value: 101},
		{object: 41, property: 4, value: 102},
	})
	require.NoError(t, err)

	// same property, different values: both reach the kernel, which
	// applies them last-writer-wins
	assert.Equal(t, []uint32{2}, countProps)
	assert.Equal(t, []uint32{4, 4}, propIDs)
	assert.Equal(t, []uint64{101, 102}, propValues)
}

func TestGroupWritesEmpty(t *testing.T) {
	objIDs, countProps, propIDs, propValues, err := groupWrites(nil)
	require.NoError(t, err)
	assert.Empty(t, objIDs)
	assert.Empty(t, countProps)
	assert.Empty(t, propIDs)
	assert.Empty(t, propValues)
}

func testOutput(t *testing.T) (*Output, *fakeCard) {
	t.Helper()

	dev, fd := newTestDevice(t)
	output, err := dev.OutputFromConnector(dev.Connectors()[0])
	require.NoError(t, err)
	return output, fd
}

func TestUpdateCommit(t *testing.T) {
	output, fd := testOutput(t)
	dev := output.dev

	mode, err := output.Connector().PreferredMode()
	require.NoError(t, err)

	buf, err := dev.AllocateBuffer(BufferTypeDumb, uint32(mode.Width()), uint32(mode.Height()), 32)
	require.NoError(t, err)
	fb, err := buf.ToFramebuffer(FormatXRGB8888)
	require.NoError(t, err)
	defer fb.Close()

	planes, err := output.Planes()
	require.NoError(t, err)
	plane := planes[0]

	committed, err := output.StartUpdate().
		SetMode(mode).
		AddConnector(NewConnectorUpdate(output.Connector())).
		AddPlane(NewPlaneUpdate(plane).
			SetFramebuffer(fb).
			SetDisplayCoordinates(0, 0).
			SetDisplaySize(mode.Width(), mode.Height()).
			SetSourceCoordinates(0, 0).
			SetSourceSize(float32(mode.Width()), float32(mode.Height()))).
		Commit()
	require.NoError(t, err)
	assert.Same(t, output, committed)

	require.Len(t, fd.commits, 1)
	commit := fd.commits[0]
	assert.Equal(t, uint32(raw.AtomicAllowModeset), commit.flags)

	// the mode went to the kernel as a blob
	require.Len(t, fd.blobs, 1)
	var blobID uint32
	for id, info := range fd.blobs {
		blobID = id
		assert.Equal(t, uint16(1920), info.Hdisplay)
		assert.Equal(t, uint16(1080), info.Vdisplay)
	}

	// counts partition the property arrays
	var total uint32
	for _, n := range commit.countProps {
		total += n
	}
	require.Equal(t, int(total), len(commit.propIDs))
	require.Equal(t, len(commit.propIDs), len(commit.propValues))
	require.Equal(t, len(commit.objIDs), len(commit.countProps))

	writes := map[[2]uint32]uint64{}
	i := 0
	for o, obj := range commit.objIDs {
		for n := uint32(0); n < commit.countProps[o]; n++ {
			writes[[2]uint32{obj, commit.propIDs[i]}] = commit.propValues[i]
			i++
		}
	}

	crtcID := output.Crtc().ObjectID()
	assert.Equal(t, uint64(1), writes[[2]uint32{crtcID, propActive}])
	assert.Equal(t, uint64(blobID), writes[[2]uint32{crtcID, propModeID}])
	assert.Equal(t, uint64(crtcID), writes[[2]uint32{output.Connector().ObjectID(), propCrtcID}])
	assert.Equal(t, uint64(crtcID), writes[[2]uint32{plane.ObjectID(), propCrtcID}])
	assert.Equal(t, uint64(fb.ID()), writes[[2]uint32{plane.ObjectID(), propFBID}])
	assert.Equal(t, uint64(1920), writes[[2]uint32{plane.ObjectID(), propCrtcW}])
	assert.Equal(t, uint64(1080), writes[[2]uint32{plane.ObjectID(), propCrtcH}])

	// source geometry is 16.16 fixed point
	assert.Equal(t, uint64(1920)<<16, writes[[2]uint32{plane.ObjectID(), propSrcW}])
	assert.Equal(t, uint64(1080)<<16, writes[[2]uint32{plane.ObjectID(), propSrcH}])
	assert.Equal(t, uint64(0), writes[[2]uint32{plane.ObjectID(), propSrcX}])
}

func TestUpdateCommitWithoutMode(t *testing.T) {
	output, fd := testOutput(t)

	planes, err := output.Planes()
	require.NoError(t, err)

	_, err = output.StartUpdate().
		AddPlane(NewPlaneUpdate(planes[1]).SetDisplayCoordinates(10, 20)).
		Commit()
	require.NoError(t, err)

	assert.Empty(t, fd.blobs, "a commit without SetMode creates no blob")
	require.Len(t, fd.commits, 1)
}

func TestUpdateCommitReusableOutput(t *testing.T) {
	output, fd := testOutput(t)

	committed, err := output.StartUpdate().Commit()
	require.NoError(t, err)

	_, err = committed.StartUpdate().Commit()
	require.NoError(t, err)
	assert.Len(t, fd.commits, 2)
}

func TestUpdateCommitUnknownProperty(t *testing.T) {
	output, fd := testOutput(t)

	planes, err := output.Planes()
	require.NoError(t, err)

	_, err = output.StartUpdate().
		AddPlane(NewPlaneUpdate(planes[0]).SetProperty("rotation", 1)).
		Commit()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "rotation")
	assert.Empty(t, fd.commits, "nothing must reach the kernel")
}

func TestUpdateCommitAfterClose(t *testing.T) {
	output, fd := testOutput(t)

	require.NoError(t, output.dev.Close())

	_, err := output.StartUpdate().Commit()
	require.ErrorIs(t, err, ErrDeviceClosed)
	assert.Empty(t, fd.commits)

	_, err = output.Planes()
	require.ErrorIs(t, err, ErrDeviceClosed)
}

func TestFixed1616(t *testing.T) {
	assert.Equal(t, uint64(0), fixed1616(0))
	assert.Equal(t, uint64(1)<<16, fixed1616(1))
	assert.Equal(t, uint64(98304), fixed1616(1.5))
	assert.Equal(t, uint64(1920)<<16, fixed1616(1920))
}
