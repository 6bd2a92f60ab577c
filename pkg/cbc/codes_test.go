package cbc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageTypeIndicKnown(t *testing.T) {
	require.True(t, MessageTypeNewData.Known())
	require.True(t, MessageTypeCorrection.Known())
	require.False(t, MessageTypeIndic("CBC703").Known())
	require.False(t, MessageTypeIndic("").Known())
}

func TestDocTypeIndicTestDataMapping(t *testing.T) {
	require.True(t, DocTypeTestNew.IsTestData())
	require.False(t, DocTypeNew.IsTestData())

	require.Equal(t, DocTypeNew, DocTypeTestNew.Live())
	require.Equal(t, DocTypeDeleted, DocTypeTestDeleted.Live())
	require.Equal(t, DocTypeCorrected, DocTypeCorrected.Live())
}

func TestDocTypeIndicLifecycle(t *testing.T) {
	require.True(t, DocTypeNew.IsNewData())
	require.True(t, DocTypeTestNew.IsNewData())
	require.True(t, DocTypeCorrected.IsCorrection())
	require.True(t, DocTypeTestDeleted.IsDeletion())
	require.True(t, DocTypeResend.IsResend())
	require.False(t, DocTypeIndic("OECD9").Known())
}

func TestBizActivityClassification(t *testing.T) {
	require.True(t, ActivityManufacturing.AssetIntensive())
	require.True(t, ActivitySales.AssetIntensive())
	require.False(t, ActivityShareholding.AssetIntensive())

	require.True(t, ActivityIPHolding.IsHolding())
	require.True(t, ActivityShareholding.IsHolding())
	require.False(t, ActivityDormant.IsHolding())
}
