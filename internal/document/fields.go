// SPDX-License-Identifier: MPL-2.0

package document

import "kenshin-cli/internal/rule"

// Field name conventions shared by the generators:
//
//	<prefix>RootOid / <prefix>Extension   instance identifier (II) pair
//	<prefix>Code / CodeSystem / DisplayName  coded value (CD) triple
//	<prefix>Value / <prefix>Currency      monetary (MO) pair, currency
//	                                      defaulting to JPY
//
// A rule writing outside its kind's declared set fails at load time, so a
// misspelled output field never silently drops data.

var cdaHeaderFields = []string{
	"typeIdRootOid", "typeIdExtension",
	"documentIdRootOid", "documentIdExtension",
	"documentTypeCode", "documentTypeCodeSystem", "documentTypeDisplayName",
	"documentTitle", "documentEffectiveTime",
	"confidentialityCode", "confidentialityCodeSystem", "confidentialityDisplayName",
	"languageCode",
	"patientIdMrnRootOid", "patientIdMrnExtension",
	"patientIdInsuranceNoRootOid", "patientIdInsuranceNoExtension",
	"patientNameFamily", "patientNameGiven",
	"patientGenderCode", "patientGenderCodeSystem", "patientGenderDisplayName",
	"patientBirthTimeValue",
	"authorIdRootOid", "authorIdExtension",
	"custodianIdRootOid", "custodianIdExtension",
	"serviceEventEffectiveTimeLow", "serviceEventEffectiveTimeHigh",
}

var hc08Fields = append([]string{
	"sectionResultsCode", "sectionResultsCodeSystem", "sectionResultsDisplayName",
	"sectionResultsTitle", "sectionResultsText",
	"examinationResults",
}, cdaHeaderFields...)

var hg08Fields = append([]string{
	"guidanceProgramName",
	"sectionInitialInterviewCode", "sectionInitialInterviewCodeSystem",
	"sectionInitialInterviewDisplayName", "sectionInitialInterviewTitle",
	"guidanceResults",
}, cdaHeaderFields...)

var cc08Fields = []string{
	"documentIdExtension", "encounterDetails",
	"patientIdMrnRootOid", "patientIdMrnExtension",
	"checkupOrgIdRootOid", "checkupOrgIdExtension",
	"insurerIdRootOid", "insurerIdExtension",
	"copaymentTypeCode", "copaymentTypeCodeSystem", "copaymentTypeDisplayName",
	"claimTypeCode", "claimTypeCodeSystem", "claimTypeDisplayName",
	"commissionTypeCode", "commissionTypeCodeSystem", "commissionTypeDisplayName",
	"totalPointsValue", "totalCostValue", "copaymentAmountValue", "claimAmountValue",
}

var gc08Fields = []string{
	"documentIdRootOid", "documentIdExtension", "creationTimeValue",
	"guidanceOrgIdRootOid", "guidanceOrgIdExtension",
	"patientIdMrnRootOid", "patientIdMrnExtension",
	"insurerIdRootOid", "insurerIdExtension",
	"guidanceLevelCode", "guidanceLevelCodeSystem", "guidanceLevelDisplayName",
	"timingCode", "timingCodeSystem", "timingDisplayName",
	"copaymentTypeCode", "copaymentTypeCodeSystem", "copaymentTypeDisplayName",
	"pointsCompletedValue", "pointsIntendedValue",
	"totalCostValue", "totalCostCurrency",
	"copaymentAmountValue", "copaymentAmountCurrency",
	"claimAmountValue", "claimAmountCurrency",
}

var indexFields = []string{
	"interactionType", "creationTime",
	"senderIdRootOid", "senderIdExtension",
	"receiverIdRootOid", "receiverIdExtension",
	"serviceEventType", "totalRecordCount",
}

var summaryFields = []string{
	"serviceEventTypeCode",
	"totalSubjectCountValue",
	"totalCostAmountValue", "totalCostAmountCurrency",
	"totalPaymentAmountValue", "totalPaymentAmountCurrency",
	"totalClaimAmountValue", "totalClaimAmountCurrency",
	"totalPaymentByOtherProgramValue", "totalPaymentByOtherProgramCurrency",
}

var fieldSets = map[Kind]rule.FieldSet{
	HC08:    rule.NewFieldSet(hc08Fields...),
	HG08:    rule.NewFieldSet(hg08Fields...),
	CC08:    rule.NewFieldSet(cc08Fields...),
	GC08:    rule.NewFieldSet(gc08Fields...),
	Index:   rule.NewFieldSet(indexFields...),
	Summary: rule.NewFieldSet(summaryFields...),
}

// Fields returns the declared output field set for a kind.
func Fields(kind Kind) rule.FieldSet { return fieldSets[kind] }
