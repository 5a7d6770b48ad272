package chain

// 捐赠合约ABI定义
const donationsABI = `[
	{"type": "function", "stateMutability": "view", "name": "totalProjects", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "projectIdAt", "inputs": [{"name": "_index", "type": "uint256"}], "outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "stateMutability": "view", "name": "getProject", "inputs": [{"name": "_projectId", "type": "string"}], "outputs": [
		{"name": "id", "type": "string"},
		{"name": "description", "type": "string"},
		{"name": "responsible", "type": "address"},
		{"name": "amountRaised", "type": "uint256"},
		{"name": "amountValidated", "type": "uint256"},
		{"name": "state", "type": "uint8"},
		{"name": "approvalVotes", "type": "uint256"},
		{"name": "cancellationVotes", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "getDonor", "inputs": [{"name": "_account", "type": "address"}], "outputs": [
		{"name": "account", "type": "address"},
		{"name": "name", "type": "string"},
		{"name": "class", "type": "uint8"},
		{"name": "totalDonated", "type": "uint256"},
		{"name": "governanceTokens", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "governanceBalance", "inputs": [{"name": "_account", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "getPurchase", "inputs": [{"name": "_purchaseId", "type": "string"}], "outputs": [
		{"name": "id", "type": "string"},
		{"name": "projectId", "type": "string"},
		{"name": "buyer", "type": "address"},
		{"name": "provider", "type": "address"},
		{"name": "materialKind", "type": "string"},
		{"name": "quantity", "type": "uint64"},
		{"name": "value", "type": "uint256"},
		{"name": "validated", "type": "bool"},
		{"name": "timestamp", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "purchaseCountByProject", "inputs": [{"name": "_projectId", "type": "string"}], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "purchaseIdAt", "inputs": [{"name": "_projectId", "type": "string"}, {"name": "_index", "type": "uint256"}], "outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "stateMutability": "view", "name": "materialCount", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "materialAt", "inputs": [{"name": "_index", "type": "uint256"}], "outputs": [
		{"name": "name", "type": "string"},
		{"name": "unitPrice", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "getProvider", "inputs": [{"name": "_account", "type": "address"}], "outputs": [
		{"name": "account", "type": "address"},
		{"name": "id", "type": "string"},
		{"name": "description", "type": "string"},
		{"name": "earnings", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "totalDonations", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "donationAt", "inputs": [{"name": "_index", "type": "uint256"}], "outputs": [
		{"name": "id", "type": "uint256"},
		{"name": "donor", "type": "address"},
		{"name": "projectId", "type": "string"},
		{"name": "amount", "type": "uint256"},
		{"name": "timestamp", "type": "uint256"}
	]},
	{"type": "function", "stateMutability": "view", "name": "governanceToken", "inputs": [], "outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "stateMutability": "view", "name": "owner", "inputs": [], "outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "stateMutability": "nonpayable", "name": "registerDonor", "inputs": [{"name": "_name", "type": "string"}, {"name": "_class", "type": "uint8"}], "outputs": []},
	{"type": "function", "stateMutability": "payable", "name": "donate", "inputs": [{"name": "_projectId", "type": "string"}], "outputs": []},
	{"type": "function", "stateMutability": "nonpayable", "name": "voteApproval", "inputs": [{"name": "_projectId", "type": "string"}, {"name": "_amount", "type": "uint256"}], "outputs": []},
	{"type": "function", "stateMutability": "nonpayable", "name": "voteCancellation", "inputs": [{"name": "_projectId", "type": "string"}, {"name": "_amount", "type": "uint256"}], "outputs": []},
	{"type": "function", "stateMutability": "nonpayable", "name": "requestPurchase", "inputs": [
		{"name": "_purchaseId", "type": "string"},
		{"name": "_projectId", "type": "string"},
		{"name": "_provider", "type": "address"},
		{"name": "_materialKind", "type": "string"},
		{"name": "_quantity", "type": "uint64"}
	], "outputs": []},
	{"type": "function", "stateMutability": "nonpayable", "name": "validatePurchase", "inputs": [{"name": "_purchaseId", "type": "string"}], "outputs": []},
	{"type": "function", "stateMutability": "nonpayable", "name": "createProject", "inputs": [
		{"name": "_projectId", "type": "string"},
		{"name": "_description", "type": "string"},
		{"name": "_responsible", "type": "address"}
	], "outputs": []},
	{"type": "event", "anonymous": false, "name": "DonorRegistered", "inputs": [
		{"indexed": true, "name": "account", "type": "address"},
		{"indexed": false, "name": "name", "type": "string"},
		{"indexed": false, "name": "class", "type": "uint8"}
	]},
	{"type": "event", "anonymous": false, "name": "DonationReceived", "inputs": [
		{"indexed": true, "name": "donor", "type": "address"},
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": false, "name": "amount", "type": "uint256"}
	]},
	{"type": "event", "anonymous": false, "name": "ApprovalVoteCast", "inputs": [
		{"indexed": true, "name": "voter", "type": "address"},
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": false, "name": "amount", "type": "uint256"}
	]},
	{"type": "event", "anonymous": false, "name": "CancellationVoteCast", "inputs": [
		{"indexed": true, "name": "voter", "type": "address"},
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": false, "name": "amount", "type": "uint256"}
	]},
	{"type": "event", "anonymous": false, "name": "ProjectApproved", "inputs": [
		{"indexed": false, "name": "projectId", "type": "string"}
	]},
	{"type": "event", "anonymous": false, "name": "ProjectCancelled", "inputs": [
		{"indexed": false, "name": "projectId", "type": "string"}
	]},
	{"type": "event", "anonymous": false, "name": "ProjectCreated", "inputs": [
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": true, "name": "responsible", "type": "address"}
	]},
	{"type": "event", "anonymous": false, "name": "PurchaseRequested", "inputs": [
		{"indexed": true, "name": "buyer", "type": "address"},
		{"indexed": false, "name": "purchaseId", "type": "string"},
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": false, "name": "value", "type": "uint256"}
	]},
	{"type": "event", "anonymous": false, "name": "PurchaseValidated", "inputs": [
		{"indexed": true, "name": "buyer", "type": "address"},
		{"indexed": false, "name": "purchaseId", "type": "string"},
		{"indexed": false, "name": "projectId", "type": "string"},
		{"indexed": false, "name": "value", "type": "uint256"}
	]}
]`

// 治理代币合约ABI定义（ERC20子集）
const tokenABI = `[
	{"type": "function", "stateMutability": "view", "name": "allowance", "inputs": [{"name": "_owner", "type": "address"}, {"name": "_spender", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "view", "name": "balanceOf", "inputs": [{"name": "_account", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "stateMutability": "nonpayable", "name": "approve", "inputs": [{"name": "_spender", "type": "address"}, {"name": "_amount", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}]},
	{"type": "event", "anonymous": false, "name": "Approval", "inputs": [
		{"indexed": true, "name": "owner", "type": "address"},
		{"indexed": true, "name": "spender", "type": "address"},
		{"indexed": false, "name": "value", "type": "uint256"}
	]}
]`
